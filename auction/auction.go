// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package auction - read-only view of marketplace auction records
//
// auctions are maintained by the auction house subsystem; the rental
// core only ever deserialises them to learn the seller entitled to a
// payout when a parcel is auction-held
package auction

import (
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/util"
)

// Auction - the auction house record for one listed asset
type Auction struct {
	AssetID         identity.Identity `json:"assetId"`
	MerkleTree      identity.Identity `json:"merkleTree"`
	Seller          identity.Identity `json:"seller"`
	PaymentCurrency identity.Identity `json:"paymentCurrency"`
	InitialPrice    uint64            `json:"initialPrice"`
	CurrentPrice    uint64            `json:"currentPrice"`
	EndTime         int64             `json:"endTime"`
	IsVerified      bool              `json:"isVerified"`
}

// Packed - raw auction record bytes
type Packed []byte

// Lookup - resolve an auction account identity to its record
type Lookup interface {
	Get(account identity.Identity) (*Auction, error)
}

// Pack - serialise an auction record
//
// fields are concatenated in struct order, identities in canonical
// binary form, numbers as Varint64, the flag as a single byte
func (a *Auction) Pack() Packed {
	message := a.AssetID.Bytes()
	message = append(message, a.MerkleTree.Bytes()...)
	message = append(message, a.Seller.Bytes()...)
	message = append(message, a.PaymentCurrency.Bytes()...)
	message = append(message, util.ToVarint64(a.InitialPrice)...)
	message = append(message, util.ToVarint64(a.CurrentPrice)...)
	message = append(message, util.ToVarint64(uint64(a.EndTime))...)
	flag := byte(0)
	if a.IsVerified {
		flag = 1
	}
	return append(message, flag)
}

// Unpack - deserialise an auction record
func Unpack(buffer Packed) (*Auction, error) {

	a := &Auction{}

	n := 0
	for _, field := range []*identity.Identity{&a.AssetID, &a.MerkleTree, &a.Seller, &a.PaymentCurrency} {
		id, used, err := identity.FromBytes(buffer[n:])
		if nil != err {
			return nil, err
		}
		*field = id
		n += used
	}

	for _, field := range []*uint64{&a.InitialPrice, &a.CurrentPrice} {
		value, used := util.FromVarint64(buffer[n:])
		if 0 == used {
			return nil, fault.ErrRecordTooShort
		}
		*field = value
		n += used
	}

	endTime, used := util.FromVarint64(buffer[n:])
	if 0 == used {
		return nil, fault.ErrRecordTooShort
	}
	a.EndTime = int64(endTime)
	n += used

	if n >= len(buffer) {
		return nil, fault.ErrRecordTooShort
	}
	a.IsVerified = 0 != buffer[n]

	return a, nil
}
