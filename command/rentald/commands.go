// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/mode"
	"github.com/skytrade/rentald/rental"
	"github.com/skytrade/rentald/settlement"
)

// setup command handler
//
// commands that run without the configuration file or any access to
// internal databases or state
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "gen-identity", "id":
		test := len(arguments) > 0 && "test" == arguments[0]

		id, privateKey, err := identity.Generate(test)
		if nil != err {
			fmt.Printf("generate identity error: %s\n", err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("identity:    %s\n", id)
		fmt.Printf("private key: %s\n", hex.EncodeToString(privateKey))

	case "version":
		fmt.Printf("%s\n", version)

	case "help", "h", "?":
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                          (h)      - display this message\n\n")
		fmt.Printf("  version                                - display program version\n\n")
		fmt.Printf("  gen-identity [test]           (id)     - create a new identity key pair\n")
		fmt.Printf("                                           \"test\" flags it for the test chains\n\n")
		fmt.Printf("  show-config                            - display the central marketplace configuration\n\n")
		fmt.Printf("  update-config FILE                     - apply the operator configuration update in the JSON FILE\n\n")
		fmt.Printf("  list-escrows                           - display all open escrow records\n\n")
		fmt.Printf("  list-rentals                           - display all tracked rental tokens\n\n")
		fmt.Printf("  deposit ACCOUNT AMOUNT                 - credit a local chain ledger account\n\n")
		fmt.Printf("  mint FILE                              - open an escrow per the JSON request in FILE\n\n")
		fmt.Printf("  transfer FILE                          - transfer a rental token per the JSON request in FILE\n\n")
		fmt.Printf("  settle FILE                            - settle an escrow per the JSON request in FILE\n\n")
		fmt.Printf("note: the recovery sweep only logs expired escrows; settlement\n")
		fmt.Printf("      must be resubmitted manually with the settle command\n")

	default:
		// not processed here
		return false
	}

	return true
}

// data command handler
//
// commands that need the live database; the configuration snapshot is
// re-read per command so an update-config is immediately visible
func processDataCommand(
	log *logger.L,
	arguments []string,
	funds *ledger.Memory,
	registry rental.Registry,
	auctions auction.Lookup,
	clock settlement.Clock,
) bool {

	command := arguments[0]
	arguments = arguments[1:]

	switch command {
	case "show-config":
		printJSON(currentConfig())

	case "update-config":
		request := struct {
			Caller identity.Identity       `json:"caller"`
			Update authority.UpdateRequest `json:"update"`
		}{}
		readJSONFile(arguments, &request)

		err := authority.Update(request.Caller, &request.Update)
		if nil != err {
			log.Errorf("update-config error: %s", err)
			exitwithstatus.Message("update-config error: %s", err)
		}
		printJSON(currentConfig())

	case "list-escrows":
		escrow.Scan(func(record *escrow.Record) bool {
			printJSON(record)
			return true
		})

	case "list-rentals":
		rental.Tokens(func(assetID identity.Identity, token *rental.Token) bool {
			fmt.Printf("asset: %s\n", assetID)
			printJSON(token)
			return true
		})

	case "deposit":
		if !mode.IsTesting() {
			exitwithstatus.Message("deposit: not available on the live chain")
		}
		if 2 != len(arguments) {
			exitwithstatus.Message("deposit: expected ACCOUNT AMOUNT")
		}
		account, err := identity.FromBase58(arguments[0])
		if nil != err {
			exitwithstatus.Message("deposit: account: %q  error: %s", arguments[0], err)
		}
		amount, err := strconv.ParseUint(arguments[1], 10, 64)
		if nil != err {
			exitwithstatus.Message("deposit: amount: %q  error: %s", arguments[1], err)
		}
		funds.Deposit(account, amount)
		fmt.Printf("balance: %d\n", funds.Balance(account))

	case "mint":
		request := rental.MintRequest{}
		readJSONFile(arguments, &request)

		tokens := rental.New(currentConfig(), funds, registry, settlement.RegistryVerifier{}, clock)
		record, claim, err := tokens.Mint(&request)
		if nil != err {
			log.Errorf("mint error: %s", err)
			exitwithstatus.Message("mint error: %s", err)
		}
		printJSON(record)
		printJSON(claim)

	case "transfer":
		request := rental.TransferRequest{}
		readJSONFile(arguments, &request)

		tokens := rental.New(currentConfig(), funds, registry, settlement.RegistryVerifier{}, clock)
		err := tokens.Transfer(&request)
		if nil != err {
			log.Errorf("transfer error: %s", err)
			exitwithstatus.Message("transfer error: %s", err)
		}
		fmt.Printf("transferred to: %s\n", request.Receiver)

	case "settle":
		request := settlement.Request{}
		readJSONFile(arguments, &request)

		engine := settlement.New(currentConfig(), funds, settlement.RegistryVerifier{}, auctions, clock)
		err := engine.Settle(&request)
		if nil != err {
			log.Errorf("settle error: %s", err)
			exitwithstatus.Message("settle error: %s", err)
		}
		fmt.Printf("settled: %s  %s\n", request.ParcelID, request.CreationTime)

	default:
		// not processed here
		return false
	}

	return true
}

// snapshot of the live configuration for one command
func currentConfig() authority.Config {
	central, err := authority.Get()
	if nil != err {
		exitwithstatus.Message("configuration error: %s", err)
	}
	return central
}

func readJSONFile(arguments []string, request interface{}) {
	if 1 != len(arguments) {
		exitwithstatus.Message("expected one JSON request file")
	}
	data, err := ioutil.ReadFile(arguments[0])
	if nil != err {
		exitwithstatus.Message("read: %q  error: %s", arguments[0], err)
	}
	if err := json.Unmarshal(data, request); nil != err {
		exitwithstatus.Message("decode: %q  error: %s", arguments[0], err)
	}
}

func printJSON(item interface{}) {
	data, err := json.MarshalIndent(item, "", "  ")
	if nil != err {
		exitwithstatus.Message("encode error: %s", err)
	}
	fmt.Printf("%s\n", data)
}
