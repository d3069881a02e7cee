// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authority - the central marketplace configuration
//
// a process-wide singleton holding the pricing parameters and trusted
// addresses; every other component receives a snapshot copy so the
// live record can only change through the authenticated update
package authority

import (
	"encoding/json"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/storage"
)

// defaults applied on first boot
const (
	defaultAdminQuota   = 0.3
	defaultBaseCostUnit = 1 // whole mint units, scaled by mint decimals
)

// 10^19 is the largest power of ten below 2^64
const maxMintDecimals = 19

// Creators - trusted creator identities for minted rental tokens
type Creators struct {
	RoyaltiesReceiver   identity.Identity `json:"royaltiesReceiver"`
	MintCreator         identity.Identity `json:"mintCreator"`
	VerificationCreator identity.Identity `json:"verificationCreator"`
}

// Config - the central configuration record
type Config struct {
	CentralizedOperator identity.Identity `json:"centralizedOperator"`
	UnitBaseCost        uint64            `json:"unitBaseCost"`
	AdminQuota          float64           `json:"adminQuota"`
	FeeAccount          identity.Identity `json:"feeAccount"`
	MintAddress         identity.Identity `json:"mintAddress"`
	MintDecimals        uint64            `json:"mintDecimals"`
	AuctionHouse        identity.Identity `json:"auctionHouse"`
	RentalRegistry      identity.Identity `json:"rentalRegistry"`
	Creators            Creators          `json:"creators"`
}

// UpdateRequest - partial configuration update
//
// nil fields leave the corresponding configuration field unchanged
type UpdateRequest struct {
	BaseCost       *uint64            `json:"baseCost"`  // whole mint units
	AdminQuota     *float64           `json:"adminQuota"`
	FeeAccount     *identity.Identity `json:"feeAccount"`
	MintAddress    *identity.Identity `json:"mintAddress"`
	AuctionHouse   *identity.Identity `json:"auctionHouse"`
	RentalRegistry *identity.Identity `json:"rentalRegistry"`
	Creators       *Creators          `json:"creators"`
}

// key of the single configuration record
var configKey = []byte("central")

var globalData struct {
	sync.RWMutex
	log    *logger.L
	config Config

	// set once during initialise
	initialised bool
}

// Initialise - load or create the configuration record
//
// on first boot the record is seeded from the boot configuration:
// base cost one whole mint unit, admin quota 30%
func Initialise(boot Config) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("authority")
	globalData.log.Info("starting…")

	if boot.CentralizedOperator.IsZero() {
		return fault.ErrInvalidAuthority
	}

	packed := storage.Pool.Config.Get(configKey)
	if nil == packed {
		// first boot: apply the default pricing
		cost, err := scaleByDecimals(defaultBaseCostUnit, boot.MintDecimals)
		if nil != err {
			return err
		}
		boot.UnitBaseCost = cost
		boot.AdminQuota = defaultAdminQuota

		globalData.config = boot
		if err := persist(&globalData.config); nil != err {
			return err
		}
		globalData.log.Infof("created configuration: operator: %s", boot.CentralizedOperator)
	} else {
		if err := json.Unmarshal(packed, &globalData.config); nil != err {
			return err
		}
		globalData.log.Infof("loaded configuration: operator: %s", globalData.config.CentralizedOperator)
	}

	globalData.initialised = true
	return nil
}

// Finalise - drop the in-memory configuration
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.config = Config{}
	globalData.initialised = false
	return nil
}

// Get - snapshot copy of the current configuration
func Get() (Config, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return Config{}, fault.ErrNotInitialised
	}
	return globalData.config, nil
}

// StoredRecord - raw stored configuration record
//
// reads the store directly for inspection tools; nil when no record
// has been created yet
func StoredRecord() []byte {
	return storage.Pool.Config.Get(configKey)
}

// Update - apply a partial configuration update
//
// only the centralized operator may update; all-or-nothing per field,
// absent fields are untouched
func Update(caller identity.Identity, request *UpdateRequest) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	if caller != globalData.config.CentralizedOperator {
		globalData.log.Warnf("update rejected: caller: %s", caller)
		return fault.ErrInvalidAuthority
	}

	// validate before mutating anything
	updated := globalData.config

	if nil != request.BaseCost {
		cost, err := scaleByDecimals(*request.BaseCost, updated.MintDecimals)
		if nil != err {
			return err
		}
		updated.UnitBaseCost = cost
	}

	if nil != request.AdminQuota {
		if *request.AdminQuota < 0 || *request.AdminQuota > 1 {
			return fault.ErrInvalidQuota
		}
		updated.AdminQuota = *request.AdminQuota
	}

	if nil != request.FeeAccount {
		updated.FeeAccount = *request.FeeAccount
	}
	if nil != request.MintAddress {
		updated.MintAddress = *request.MintAddress
	}
	if nil != request.AuctionHouse {
		updated.AuctionHouse = *request.AuctionHouse
	}
	if nil != request.RentalRegistry {
		updated.RentalRegistry = *request.RentalRegistry
	}
	if nil != request.Creators {
		updated.Creators = *request.Creators
	}

	if err := persist(&updated); nil != err {
		return err
	}

	globalData.config = updated
	globalData.log.Infof("configuration updated: base cost: %d  quota: %f",
		updated.UnitBaseCost, updated.AdminQuota)
	return nil
}

// write the configuration record to the store
func persist(config *Config) error {
	packed, err := json.Marshal(config)
	if nil != err {
		return err
	}
	storage.Pool.Config.Put(configKey, packed)
	return nil
}

func pow10(n uint64) uint64 {
	result := uint64(1)
	for i := uint64(0); i < n; i += 1 {
		result *= 10
	}
	return result
}

// integer scaling per the fixed-point convention: value × 10^decimals
//
// decimals beyond the uint64 range or a wrapping product fail with
// ErrArithmeticOverflow
func scaleByDecimals(value uint64, decimals uint64) (uint64, error) {
	if decimals > maxMintDecimals {
		return 0, fault.ErrArithmeticOverflow
	}
	if 0 == value {
		return 0, nil
	}
	scale := pow10(decimals)
	scaled := value * scale
	if scaled/value != scale {
		return 0, fault.ErrArithmeticOverflow
	}
	return scaled, nil
}
