// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package auction

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/storage"
)

// PoolLookup - auctions mirrored into the local data store
//
// records are keyed by the canonical bytes of the auction account
// identity
type PoolLookup struct{}

// Get - fetch and unpack one auction record
func (PoolLookup) Get(account identity.Identity) (*Auction, error) {
	packed := storage.Pool.Auctions.Get(account.Bytes())
	if nil == packed {
		return nil, fault.ErrAuctionNotFound
	}
	return Unpack(packed)
}

// Store - mirror an auction record into the local data store
func (PoolLookup) Store(account identity.Identity, a *Auction) {
	storage.Pool.Auctions.Put(account.Bytes(), a.Pack())
}

// cache timing
const (
	cacheExpiry  = 30 * time.Second
	cacheCleanup = 5 * time.Minute
)

// CachedLookup - TTL cache in front of a slower lookup
type CachedLookup struct {
	next  Lookup
	cache *gocache.Cache
}

// NewCachedLookup - wrap a lookup with a short lived cache
func NewCachedLookup(next Lookup) *CachedLookup {
	return &CachedLookup{
		next:  next,
		cache: gocache.New(cacheExpiry, cacheCleanup),
	}
}

// Get - cached fetch; negative results are not cached
func (c *CachedLookup) Get(account identity.Identity) (*Auction, error) {
	key := account.String()
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*Auction), nil
	}

	a, err := c.next.Get(account)
	if nil != err {
		return nil, err
	}
	c.cache.Set(key, a, gocache.DefaultExpiration)
	return a, nil
}
