// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/skytrade/rentald/auction"
	auctionmocks "github.com/skytrade/rentald/auction/mocks"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/settlement"
)

// a simple wallet is its own receiver and never hits the lookup
func TestResolveCustodyWallet(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	config := testConfig()
	wallet, _, _ := identity.Generate(true)
	lookup := auctionmocks.NewMockLookup(ctl)

	custody, err := settlement.ResolveCustody(config, wallet, identity.Identity{}, lookup)
	assert.Nil(t, err, "resolve error")

	receiver, err := custody.Receiver()
	assert.Nil(t, err, "receiver error")
	assert.Equal(t, wallet, receiver, "wrong receiver")
}

// an auction house held account resolves to the auction's seller
func TestResolveCustodyAuction(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	config := testConfig()
	holder, _, _ := identity.Generate(true)
	seller, _, _ := identity.Generate(true)

	lookup := auctionmocks.NewMockLookup(ctl)
	lookup.EXPECT().Get(holder).Return(&auction.Auction{Seller: seller}, nil)

	custody, err := settlement.ResolveCustody(config, holder, config.AuctionHouse, lookup)
	assert.Nil(t, err, "resolve error")

	receiver, err := custody.Receiver()
	assert.Nil(t, err, "receiver error")
	assert.Equal(t, seller, receiver, "wrong receiver")
}

// a missing auction record fails resolution
func TestResolveCustodyAuctionMissing(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	config := testConfig()
	holder, _, _ := identity.Generate(true)

	lookup := auctionmocks.NewMockLookup(ctl)
	lookup.EXPECT().Get(holder).Return(nil, fault.ErrAuctionNotFound)

	_, err := settlement.ResolveCustody(config, holder, config.AuctionHouse, lookup)
	assert.Equal(t, fault.ErrAuctionNotFound, err, "missing auction accepted")
}

// any other owning program yields no receiver at all
func TestResolveCustodyUnknownProgram(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	config := testConfig()
	holder, _, _ := identity.Generate(true)
	program, _, _ := identity.Generate(true)
	lookup := auctionmocks.NewMockLookup(ctl)

	custody, err := settlement.ResolveCustody(config, holder, program, lookup)
	assert.Nil(t, err, "resolve error")

	_, err = custody.Receiver()
	assert.Equal(t, fault.ErrInvalidReceiver, err, "unknown custodian paid")
}
