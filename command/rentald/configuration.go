// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/chain"
	"github.com/skytrade/rentald/configuration"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/util"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"
	defaultSkyTradeDatabase = chain.SkyTrade + ".leveldb"
	defaultTestingDatabase  = chain.Testing + ".leveldb"
	defaultLocalDatabase    = chain.Local + ".leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "rentald.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// trusted creator identities in base58 text form
type CreatorsType struct {
	RoyaltiesReceiver   string `gluamapper:"royalties_receiver" json:"royalties_receiver"`
	MintCreator         string `gluamapper:"mint_creator" json:"mint_creator"`
	VerificationCreator string `gluamapper:"verification_creator" json:"verification_creator"`
}

// marketplace identities and pricing boot values, all identities in
// base58 text form
type MarketplaceType struct {
	Operator       string       `gluamapper:"operator" json:"operator"`
	FeeAccount     string       `gluamapper:"fee_account" json:"fee_account"`
	MintAddress    string       `gluamapper:"mint_address" json:"mint_address"`
	MintDecimals   uint64       `gluamapper:"mint_decimals" json:"mint_decimals"`
	AuctionHouse   string       `gluamapper:"auction_house" json:"auction_house"`
	RentalRegistry string       `gluamapper:"rental_registry" json:"rental_registry"`
	Creators       CreatorsType `gluamapper:"creators" json:"creators"`
}

type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Chain         string       `gluamapper:"chain" json:"chain"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	// directory receiving auction house export files
	AuctionMirrorDirectory string `gluamapper:"auction_mirror_directory" json:"auction_mirror_directory"`

	Marketplace MarketplaceType      `gluamapper:"marketplace" json:"marketplace"`
	Logging     logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chain.SkyTrade,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultSkyTradeDatabase,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	// if any test mode and the database file was not specified
	// switch to appropriate default.  Abort if then chain name is
	// not recognised.
	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, errors.New(fmt.Sprintf("Chain: %q is not supported", options.Chain))
	}

	// if database was not changed from default
	if options.Database.Name == defaultSkyTradeDatabase {
		switch options.Chain {
		case chain.SkyTrade:
			// already correct default
		case chain.Testing:
			options.Database.Name = defaultTestingDatabase
		case chain.Local:
			options.Database.Name = defaultLocalDatabase
		default:
			return nil, errors.New(fmt.Sprintf("Chain: %s no default database setting", options.Chain))
		}
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, errors.New(fmt.Sprintf("Path: %q is not a valid directory", options.DataDirectory))
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, errors.New(fmt.Sprintf("Path: %q is not a directory", options.DataDirectory))
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = util.EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.AuctionMirrorDirectory,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path seperator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, errors.New(fmt.Sprintf("Files: %q is not plain name", *f[0]))
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = util.EnsureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// assemble the authority boot record from the configuration
//
// only the operator is mandatory; unset identities stay zero and the
// matching subsystems simply refuse the operations that need them
func (configuration *Configuration) bootAuthority() (authority.Config, error) {

	boot := authority.Config{
		MintDecimals: configuration.Marketplace.MintDecimals,
	}

	fields := []struct {
		text   string
		target *identity.Identity
	}{
		{configuration.Marketplace.Operator, &boot.CentralizedOperator},
		{configuration.Marketplace.FeeAccount, &boot.FeeAccount},
		{configuration.Marketplace.MintAddress, &boot.MintAddress},
		{configuration.Marketplace.AuctionHouse, &boot.AuctionHouse},
		{configuration.Marketplace.RentalRegistry, &boot.RentalRegistry},
		{configuration.Marketplace.Creators.RoyaltiesReceiver, &boot.Creators.RoyaltiesReceiver},
		{configuration.Marketplace.Creators.MintCreator, &boot.Creators.MintCreator},
		{configuration.Marketplace.Creators.VerificationCreator, &boot.Creators.VerificationCreator},
	}
	for _, field := range fields {
		if "" == field.text {
			continue
		}
		id, err := identity.FromBase58(field.text)
		if nil != err {
			return authority.Config{}, err
		}
		*field.target = id
	}

	return boot, nil
}
