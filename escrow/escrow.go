// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package escrow - custodial records for rental payments
//
// one record exists for each (parcel, creation time) rental window; it
// is created when the rental token is minted, holds custody of the
// collected payment, and is deleted by settlement so a second
// settlement attempt is structurally impossible
package escrow

import (
	"time"

	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/fees"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/merkle"
	"github.com/skytrade/rentald/storage"
	"github.com/skytrade/rentald/util"
)

// rental window parameters
const (
	// RentalWindow - the fixed duration of one rental
	RentalWindow = 30 * time.Minute

	// maximum number of months a rental may be booked ahead
	maximumMonthsAhead = 3
)

// tags for custody account derivation
var (
	custodyTag = []byte("rent-escrow")
)

// Record - one open escrow
//
// immutable once created except for deletion at settlement
type Record struct {
	ParcelID     identity.Identity `json:"parcelId"`
	CreationTime string            `json:"creationTime"`
	EndTime      string            `json:"endTime"`
	ExpectedCost uint64            `json:"expectedCost"`
	FeeQuota     uint64            `json:"feeQuota"`
}

// Key - the unique store key for one rental window
func Key(parcelID identity.Identity, creationTime string) []byte {
	key := parcelID.Bytes()
	return append(key, []byte(creationTime)...)
}

// Key - store key of this record
func (record *Record) Key() []byte {
	return Key(record.ParcelID, record.CreationTime)
}

// CustodyAccount - the ledger account holding this escrow's funds
//
// derived from the record key so it exists independently of any user
// key; the account draws under its own authority at settlement
func (record *Record) CustodyAccount() identity.Identity {
	message := append([]byte{}, custodyTag...)
	message = append(message, record.Key()...)
	digest := merkle.NewDigest(message)

	id, _ := identity.New(digest[:], record.ParcelID.Test, false)
	return id
}

// Expired - true once the trusted clock passes the end of the window
func (record *Record) Expired(now time.Time) bool {
	endTime, err := time.Parse(time.RFC3339, record.EndTime)
	if nil != err {
		return false
	}
	return !now.Before(endTime)
}

// ValidateCreationTime - parse and validate a rental window start
//
// the minute of the hour must be exactly 00 or 30 and the start must
// not be more than three months past the supplied clock reading
func ValidateCreationTime(creationTime string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, creationTime)
	if nil != err {
		return time.Time{}, fault.ErrInvalidTimeString
	}

	minute := parsed.Minute()
	if 0 != minute && 30 != minute {
		return time.Time{}, fault.ErrInvalidTime
	}

	if parsed.After(now.AddDate(0, maximumMonthsAhead, 0)) {
		return time.Time{}, fault.ErrTimeToFarInFuture
	}

	return parsed, nil
}

// Open - create an escrow and take custody of the rental payment
//
// either both the record and the held funds exist afterwards or
// neither does: a failed transfer leaves no record and a duplicate
// key leaves the payer untouched
func Open(
	config authority.Config,
	transferService ledger.Ledger,
	now time.Time,
	parcelID identity.Identity,
	creationTime string,
	payer identity.Identity,
	quantity uint64,
) (*Record, error) {

	if 0 == quantity {
		return nil, fault.ErrInvalidCount
	}

	parsed, err := ValidateCreationTime(creationTime, now)
	if nil != err {
		return nil, err
	}

	expectedCost, err := fees.Cost(config.UnitBaseCost, quantity)
	if nil != err {
		return nil, err
	}
	feeQuota := fees.Quota(expectedCost, config.AdminQuota)

	record := &Record{
		ParcelID:     parcelID,
		CreationTime: creationTime,
		EndTime:      parsed.Add(RentalWindow).Format(time.RFC3339),
		ExpectedCost: expectedCost,
		FeeQuota:     feeQuota,
	}

	trx, err := storage.Begin()
	if nil != err {
		return nil, err
	}

	if trx.Has(storage.Pool.Escrows, record.Key()) {
		trx.Abort()
		return nil, fault.ErrEscrowAlreadyExists
	}

	// move the payment into custody before the record becomes visible
	err = transferService.Transfer(payer, record.CustodyAccount(), expectedCost, payer)
	if nil != err {
		trx.Abort()
		return nil, err
	}

	trx.Put(storage.Pool.Escrows, record.Key(), record.Pack())

	err = trx.Commit()
	if nil != err {
		// reverse the orphaned transfer, the record was never stored
		_ = transferService.Transfer(record.CustodyAccount(), payer, expectedCost, record.CustodyAccount())
		return nil, err
	}

	return record, nil
}

// Get - fetch one escrow record
func Get(parcelID identity.Identity, creationTime string) (*Record, error) {
	packed := storage.Pool.Escrows.Get(Key(parcelID, creationTime))
	if nil == packed {
		return nil, fault.ErrEscrowNotFound
	}
	return Unpack(packed)
}

// Close - delete the record inside the enclosing transaction
//
// settlement must be the only caller; deletion rather than a flag
// makes reuse of a settled escrow structurally impossible
func Close(record *Record, trx storage.Transaction) {
	trx.Delete(storage.Pool.Escrows, record.Key())
}

// Scan - iterate over all open escrows
func Scan(fn func(*Record) bool) {
	storage.Pool.Escrows.Scan(func(key []byte, value []byte) bool {
		record, err := Unpack(value)
		if nil != err {
			return true // skip damaged records
		}
		return fn(record)
	})
}

// Packed - raw escrow record bytes
type Packed []byte

// Pack - serialise an escrow record
func (record *Record) Pack() Packed {
	message := record.ParcelID.Bytes()
	message = appendString(message, record.CreationTime)
	message = appendString(message, record.EndTime)
	message = append(message, util.ToVarint64(record.ExpectedCost)...)
	message = append(message, util.ToVarint64(record.FeeQuota)...)
	return message
}

// Unpack - deserialise an escrow record
func Unpack(buffer Packed) (*Record, error) {

	record := &Record{}

	parcelID, n, err := identity.FromBytes(buffer)
	if nil != err {
		return nil, err
	}
	record.ParcelID = parcelID

	for _, field := range []*string{&record.CreationTime, &record.EndTime} {
		s, used, err := unpackString(buffer[n:])
		if nil != err {
			return nil, err
		}
		*field = s
		n += used
	}

	for _, field := range []*uint64{&record.ExpectedCost, &record.FeeQuota} {
		value, used := util.FromVarint64(buffer[n:])
		if 0 == used {
			return nil, fault.ErrRecordTooShort
		}
		*field = value
		n += used
	}

	return record, nil
}

// append a length prefixed string
func appendString(buffer []byte, s string) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(s)))...)
	return append(buffer, s...)
}

// read a length prefixed string
func unpackString(buffer []byte) (string, int, error) {
	length, used := util.FromVarint64(buffer)
	if 0 == used {
		return "", 0, fault.ErrRecordTooShort
	}
	if uint64(len(buffer)-used) < length {
		return "", 0, fault.ErrRecordTooShort
	}
	return string(buffer[used : used+int(length)]), used + int(length), nil
}
