// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Package config loads and hot-reloads the node's TOML configuration:
// naoina/toml for decoding (field names are matched case-insensitively
// against TOML keys, matching geth-family config files), fsnotify to
// pick up edits without a restart, and gofrs/flock so two node
// processes never share a data directory by accident.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/naoina/toml"

	"github.com/velaproject/go-vela/common"
	"github.com/velaproject/go-vela/consensus/vela"
	"github.com/velaproject/go-vela/log"
)

// Config is the full node configuration.
type Config struct {
	DataDir         string
	ListenAddr      string
	StakingRegistry string // hex-encoded address
	Params          vela.Params
}

// Default returns a configuration with the genesis parameter set and a
// local data directory.
func Default() Config {
	return Config{
		DataDir:    "./data",
		ListenAddr: ":30303",
		Params:     vela.DefaultParams(),
	}
}

// StakingRegistryAddress parses the configured hex address.
func (c Config) StakingRegistryAddress() common.Address {
	s := c.StakingRegistry
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}
	b := make([]byte, len(s)/2)
	for i := range b {
		var hi, lo byte
		hi = hexNibble(s[i*2])
		lo = hexNibble(s[i*2+1])
		b[i] = hi<<4 | lo
	}
	return common.BytesToAddress(b)
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Load reads and decodes the TOML file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := Default()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watcher hot-reloads a config file, publishing successfully decoded
// revisions on Updates. Updates holds one revision; a revision decoded
// while an earlier one is still unread is not sent, though Current
// reflects it. A decode failure is logged and the previous
// configuration is kept in effect.
type Watcher struct {
	path    string
	lock    *flock.Flock
	watcher *fsnotify.Watcher
	log     log.Logger

	mu      sync.RWMutex
	current Config

	Updates chan Config
}

// NewWatcher opens path, takes an exclusive advisory lock on a LOCK
// file in the configured data directory, creating the directory if
// needed (so a second node process started against the same data
// directory fails fast instead of corrupting state), and starts
// watching for edits.
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, err
	}
	lock := flock.New(filepath.Join(cfg.DataDir, "LOCK"))
	if locked, err := lock.TryLock(); err != nil || !locked {
		return nil, os.ErrPermission
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		lock.Unlock()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		lock:    lock,
		watcher: fw,
		log:     log.New("module", "config"),
		current: cfg,
		Updates: make(chan Config, 1),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Warn("config reload failed, keeping previous revision", "err", err)
				continue
			}
			w.mu.Lock()
			w.current = cfg
			w.mu.Unlock()
			select {
			case w.Updates <- cfg:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", "err", err)
		}
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Close stops watching and releases the data-directory lock.
func (w *Watcher) Close() error {
	w.watcher.Close()
	return w.lock.Unlock()
}
