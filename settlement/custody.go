// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
)

// custody classification of the parcel's current holder
type custodyKind int

const (
	directOwner custodyKind = iota
	auctionHeld
	unsupported
)

// Custody - resolved custody of a parcel leaf
//
// resolved once per settlement; Receiver is the only identity allowed
// to be paid the non-fee share
type Custody struct {
	kind    custodyKind
	owner   identity.Identity
	auction *auction.Auction
}

// ResolveCustody - classify the current holder of a parcel
//
// holder is the account owning the leaf; owningProgram is the program
// owning that account, zero for a simple wallet
func ResolveCustody(
	config authority.Config,
	holder identity.Identity,
	owningProgram identity.Identity,
	auctions auction.Lookup,
) (Custody, error) {

	switch {
	case owningProgram.IsZero():
		// a simple wallet is its own receiver
		return Custody{kind: directOwner, owner: holder}, nil

	case owningProgram == config.AuctionHouse:
		a, err := auctions.Get(holder)
		if nil != err {
			return Custody{}, err
		}
		return Custody{kind: auctionHeld, auction: a}, nil

	default:
		// unknown custodianship is never trusted
		return Custody{kind: unsupported}, nil
	}
}

// Receiver - the identity entitled to the payout
func (c Custody) Receiver() (identity.Identity, error) {
	switch c.kind {
	case directOwner:
		return c.owner, nil
	case auctionHeld:
		return c.auction.Seller, nil
	default:
		return identity.Identity{}, fault.ErrInvalidReceiver
	}
}
