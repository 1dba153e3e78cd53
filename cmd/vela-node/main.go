// Copyright 2025 go-vela Authors
// This file is part of the go-vela library.

// Command vela-node initializes a standalone consensus node: it loads
// the node configuration, opens an in-memory backing store and state,
// builds the vela engine, logs the result, and exits. It runs no
// header-verification or block-sealing loop.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/velaproject/go-vela/config"
	"github.com/velaproject/go-vela/consensus/vela"
	"github.com/velaproject/go-vela/core/state"
	"github.com/velaproject/go-vela/ethdb/memorydb"
	"github.com/velaproject/go-vela/log"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to the node's TOML configuration file",
		Value: "vela.toml",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity (0=crit .. 5=trace)",
		Value: int(log.LvlInfo),
	}
)

func main() {
	// automaxprocs matches GOMAXPROCS to the container's cgroup CPU
	// quota rather than the host's full core count, the way the
	// teacher's own node entrypoints do before starting any workers.
	if _, err := maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {})); err != nil {
		fmt.Fprintf(os.Stderr, "vela-node: maxprocs: %v\n", err)
	}

	app := &cli.App{
		Name:  "vela-node",
		Usage: "run a go-vela consensus node",
		Flags: []cli.Flag{configFlag, verbosityFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log.SetLevel(log.Lvl(c.Int(verbosityFlag.Name)))
	logger := log.New("module", "vela-node")

	cfg := config.Default()
	if path := c.String(configFlag.Name); path != "" {
		if loaded, err := config.Load(path); err == nil {
			cfg = loaded
		} else {
			logger.Warn("using default configuration", "config_path", path, "err", err)
		}
	}

	db := memorydb.New()
	global := state.NewGlobalCache(0)
	st := state.New(db, 0, global)

	registry := cfg.StakingRegistryAddress()
	engine := vela.New(cfg.Params, registry, vela.RejectAllVerifier)

	logger.Info("node initialized", "engine", engine.Name(), "staking_registry", registry, "state_root", st.Root())
	return nil
}
