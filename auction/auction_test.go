// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package auction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
)

func makeAuction(t *testing.T) *auction.Auction {
	assetID, _, err := identity.Generate(true)
	assert.Nil(t, err, "generate error")
	tree, _, _ := identity.Generate(true)
	seller, _, _ := identity.Generate(true)
	currency, _, _ := identity.Generate(true)

	return &auction.Auction{
		AssetID:         assetID,
		MerkleTree:      tree,
		Seller:          seller,
		PaymentCurrency: currency,
		InitialPrice:    1000000,
		CurrentPrice:    2500000,
		EndTime:         1577836800,
		IsVerified:      true,
	}
}

// pack → unpack must reproduce every field
func TestPackUnpack(t *testing.T) {

	a := makeAuction(t)

	packed := a.Pack()
	unpacked, err := auction.Unpack(packed)
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, a, unpacked, "round trip mismatch")
}

// truncation anywhere must fail, never panic
func TestUnpackTruncated(t *testing.T) {

	packed := makeAuction(t).Pack()

	for cut := 0; cut < len(packed); cut += 7 {
		_, err := auction.Unpack(packed[:cut])
		assert.NotNil(t, err, "cut: %d  truncated record unpacked", cut)
	}
}

type staticLookup struct {
	auction *auction.Auction
	calls   int
}

func (s *staticLookup) Get(account identity.Identity) (*auction.Auction, error) {
	s.calls += 1
	if nil == s.auction {
		return nil, fault.ErrAuctionNotFound
	}
	return s.auction, nil
}

// the cache must serve repeats without hitting the backing lookup
func TestCachedLookup(t *testing.T) {

	account, _, _ := identity.Generate(true)

	backing := &staticLookup{auction: makeAuction(t)}
	cached := auction.NewCachedLookup(backing)

	first, err := cached.Get(account)
	assert.Nil(t, err, "first get error")

	second, err := cached.Get(account)
	assert.Nil(t, err, "second get error")

	assert.Equal(t, first, second, "cache returned different record")
	assert.Equal(t, 1, backing.calls, "cache missed on repeat")

	// not found is not cached
	missing, _, _ := identity.Generate(true)
	empty := &staticLookup{}
	cachedEmpty := auction.NewCachedLookup(empty)

	_, err = cachedEmpty.Get(missing)
	assert.Equal(t, fault.ErrAuctionNotFound, err, "wrong error")
	_, err = cachedEmpty.Get(missing)
	assert.Equal(t, fault.ErrAuctionNotFound, err, "wrong error")
	assert.Equal(t, 2, empty.calls, "negative result was cached")
}
