// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// inspect a rentald database without running the daemon
//
// all access is read-only so it is safe to point at a live data
// directory
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/fees"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/rental"
	"github.com/skytrade/rentald/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "rental-cli"
	app.Usage = "inspect a rentald database"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*rentald database `DIRECTORY`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "config",
			Usage:  "display the central marketplace configuration",
			Action: runConfig,
		},
		{
			Name:   "escrows",
			Usage:  "list all open escrow records",
			Action: runEscrows,
		},
		{
			Name:      "escrow",
			Usage:     "display one escrow record",
			ArgsUsage: "PARCEL-ID CREATION-TIME",
			Action:    runEscrow,
		},
		{
			Name:   "rentals",
			Usage:  "list all tracked rental tokens",
			Action: runRentals,
		},
		{
			Name:      "auction",
			Usage:     "display one mirrored auction record",
			ArgsUsage: "ACCOUNT",
			Action:    runAuction,
		},
		{
			Name:      "fee",
			Usage:     "preview the fee split of a rental",
			ArgsUsage: "UNIT-COST QUANTITY QUOTA",
			Action:    runFee,
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

// open the database read-only for the duration of one command
func withDatabase(c *cli.Context, fn func() error) error {
	database := c.GlobalString("database")
	if "" == database {
		return fmt.Errorf("missing --database option")
	}

	err := storage.Initialise(database, storage.ReadOnly)
	if nil != err {
		return fmt.Errorf("database: %q  error: %s", database, err)
	}
	defer storage.Finalise()

	return fn()
}

func runConfig(c *cli.Context) error {
	return withDatabase(c, func() error {
		packed := authority.StoredRecord()
		if nil == packed {
			return fmt.Errorf("no configuration record")
		}

		config := authority.Config{}
		if err := json.Unmarshal(packed, &config); nil != err {
			return err
		}
		return printJSON(c, config)
	})
}

func runEscrows(c *cli.Context) error {
	return withDatabase(c, func() error {
		var failure error
		escrow.Scan(func(record *escrow.Record) bool {
			failure = printJSON(c, record)
			return nil == failure
		})
		return failure
	})
}

func runEscrow(c *cli.Context) error {
	if 2 != len(c.Args()) {
		return fmt.Errorf("expected PARCEL-ID CREATION-TIME")
	}

	parcelID, err := identity.FromBase58(c.Args()[0])
	if nil != err {
		return fmt.Errorf("parcel: %q  error: %s", c.Args()[0], err)
	}
	creationTime := c.Args()[1]

	return withDatabase(c, func() error {
		record, err := escrow.Get(parcelID, creationTime)
		if nil != err {
			return err
		}
		return printJSON(c, record)
	})
}

func runRentals(c *cli.Context) error {
	return withDatabase(c, func() error {
		var failure error
		rental.Tokens(func(assetID identity.Identity, token *rental.Token) bool {
			failure = printJSON(c, struct {
				AssetID identity.Identity `json:"assetId"`
				Token   *rental.Token     `json:"token"`
			}{AssetID: assetID, Token: token})
			return nil == failure
		})
		return failure
	})
}

func runAuction(c *cli.Context) error {
	if 1 != len(c.Args()) {
		return fmt.Errorf("expected ACCOUNT")
	}

	account, err := identity.FromBase58(c.Args()[0])
	if nil != err {
		return fmt.Errorf("account: %q  error: %s", c.Args()[0], err)
	}

	return withDatabase(c, func() error {
		record, err := auction.PoolLookup{}.Get(account)
		if nil != err {
			return err
		}
		return printJSON(c, record)
	})
}

// no database needed, purely arithmetic
func runFee(c *cli.Context) error {
	if 3 != len(c.Args()) {
		return fmt.Errorf("expected UNIT-COST QUANTITY QUOTA")
	}

	unitCost, err := strconv.ParseUint(c.Args()[0], 10, 64)
	if nil != err {
		return fmt.Errorf("unit cost: %q  error: %s", c.Args()[0], err)
	}
	quantity, err := strconv.ParseUint(c.Args()[1], 10, 64)
	if nil != err {
		return fmt.Errorf("quantity: %q  error: %s", c.Args()[1], err)
	}
	quota, err := strconv.ParseFloat(c.Args()[2], 64)
	if nil != err {
		return fmt.Errorf("quota: %q  error: %s", c.Args()[2], err)
	}

	cost, err := fees.Cost(unitCost, quantity)
	if nil != err {
		return err
	}
	feeQuota := fees.Quota(cost, quota)

	fmt.Fprintf(c.App.Writer, "expected cost: %d\n", cost)
	fmt.Fprintf(c.App.Writer, "fee quota:     %d\n", feeQuota)
	fmt.Fprintf(c.App.Writer, "receiver:      %d\n", cost-feeQuota)
	return nil
}

func printJSON(c *cli.Context, item interface{}) error {
	data, err := json.MarshalIndent(item, "", "  ")
	if nil != err {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n", data)
	return nil
}
