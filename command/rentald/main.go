// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/background"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/mode"
	"github.com/skytrade/rentald/rental"
	"github.com/skytrade/rentald/settlement"
	"github.com/skytrade/rentald/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "set", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 's'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// "--set name=value" items passed through to the Lua configuration
	variables := map[string]string{}
	for _, setting := range options["set"] {
		s := strings.SplitN(setting, "=", 2)
		if 2 != len(s) {
			exitwithstatus.Message("%s: set: %q is not name=value", program, setting)
		}
		variables[s[0]] = s[1]
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, variables)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// set the initial system mode - before any background tasks are started
	err = mode.Initialise(theConfiguration.Chain)
	if nil != err {
		log.Criticalf("mode initialise error: %s", err)
		exitwithstatus.Message("mode initialise error: %s", err)
	}
	defer mode.Finalise()

	// general info
	log.Infof("test mode: %v", mode.IsTesting())
	log.Infof("database: %q", theConfiguration.Database)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// load or create the central marketplace configuration
	boot, err := theConfiguration.bootAuthority()
	if nil != err {
		log.Criticalf("marketplace configuration error: %s", err)
		exitwithstatus.Message("marketplace configuration error: %s", err)
	}
	log.Info("initialise authority")
	err = authority.Initialise(boot)
	if nil != err {
		log.Criticalf("authority initialise error: %s", err)
		exitwithstatus.Message("authority initialise error: %s", err)
	}
	defer authority.Finalise()

	// in-process collaborators; the skytrade chain will replace these
	// with connectors to the external ledger and registry
	funds := ledger.NewMemory()
	registry := rental.NewMemoryRegistry()
	clock := settlement.SystemClock{}
	auctions := auction.NewCachedLookup(auction.PoolLookup{})

	// these commands operate on the live data; each reads its own
	// configuration snapshot so update-config takes effect at once
	if len(arguments) > 0 && processDataCommand(log, arguments, funds, registry, auctions, clock) {
		return
	}

	// recovery sweep: expired escrows missing their settlement
	// submission are logged for the operator to resubmit
	sweeper := settlement.NewSweeper(clock, func(record *escrow.Record) {
		log.Warnf("expired escrow awaiting settlement: parcel: %s  window: %s  cost: %d",
			record.ParcelID, record.CreationTime, record.ExpectedCost)
	})

	processes := background.Processes{sweeper}

	// mirror auction house exports when a directory is configured
	if "" != theConfiguration.AuctionMirrorDirectory {
		processes = append(processes, auction.NewWatcher(theConfiguration.AuctionMirrorDirectory))
	}

	mode.Set(mode.Normal)

	bg := background.Start(processes, nil)
	defer bg.StopAndWait()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	mode.Set(mode.Stopped)
}
