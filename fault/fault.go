// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// IsErrExists - determine if error class is ExistsError
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine if error class is InvalidError
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrNotFound - determine if error class is NotFoundError
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised             = ExistsError("already initialised")
	ErrArithmeticOverflow             = ProcessError("arithmetic overflow")
	ErrAuctionNotFound                = NotFoundError("auction not found")
	ErrCannotDecodeIdentity           = InvalidError("cannot decode identity")
	ErrChecksumMismatch               = ProcessError("checksum mismatch")
	ErrEscrowAlreadyExists            = ExistsError("escrow already exists")
	ErrEscrowNotFound                 = NotFoundError("escrow not found")
	ErrInsufficientFunds              = InvalidError("insufficient funds")
	ErrInvalidAuthority               = InvalidError("invalid authority provided")
	ErrInvalidChain                   = InvalidError("invalid chain")
	ErrInvalidCount                   = InvalidError("invalid count")
	ErrInvalidKeyLength               = InvalidError("invalid key length")
	ErrInvalidLandNFTData             = InvalidError("provided land nft data is invalid")
	ErrInvalidMint                    = InvalidError("this token mint is not supported")
	ErrInvalidQuota                   = InvalidError("admin quota is outside of [0,1]")
	ErrInvalidReceiver                = InvalidError("payment receiver is not the actual owner")
	ErrInvalidRemainingAccountsPassed = InvalidError("provided proof account batch is malformed")
	ErrInvalidRentalAddressPassed     = InvalidError("provided rental registry address is invalid")
	ErrInvalidStructPointer           = InvalidError("invalid struct pointer")
	ErrInvalidTime                    = InvalidError("provided minutes in the time should be 00 or 30")
	ErrInvalidTimeString              = InvalidError("the iso time string is invalid")
	ErrInvalidTransferTime            = InvalidError("rental token has not expired yet")
	ErrKeyNotFound                    = NotFoundError("key not found")
	ErrNotInitialised                 = ProcessError("not initialised")
	ErrNotRentalTokenOwner            = InvalidError("sender does not own the rental token")
	ErrRecordTooShort                 = LengthError("record too short")
	ErrRentalTokenNotFound            = NotFoundError("rental token not found")
	ErrTimeToFarInFuture              = InvalidError("provided time should not be more than 3 months in future")
	ErrTransactionInUse               = ProcessError("transaction already in use")
	ErrWrongNetworkForPrivateKey      = InvalidError("wrong network for private key")
)
