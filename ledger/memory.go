// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sync"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
)

// Memory - in-process ledger for the local and testing chains
//
// each account draws under its own identity unless a custodian has
// been registered for it
type Memory struct {
	sync.Mutex
	balances    map[identity.Identity]uint64
	authorities map[identity.Identity]identity.Identity
}

// NewMemory - create an empty in-process ledger
func NewMemory() *Memory {
	return &Memory{
		balances:    make(map[identity.Identity]uint64),
		authorities: make(map[identity.Identity]identity.Identity),
	}
}

// Deposit - credit an account directly
func (m *Memory) Deposit(account identity.Identity, amount uint64) {
	m.Lock()
	defer m.Unlock()
	m.balances[account] += amount
}

// Balance - current balance of an account
func (m *Memory) Balance(account identity.Identity) uint64 {
	m.Lock()
	defer m.Unlock()
	return m.balances[account]
}

// SetAuthority - register a custodian for an account
//
// used for escrow custody accounts whose funds are drawn by the
// escrow record's own authority, never by a user key
func (m *Memory) SetAuthority(account identity.Identity, authority identity.Identity) {
	m.Lock()
	defer m.Unlock()
	m.authorities[account] = authority
}

// Transfer - move value between accounts
func (m *Memory) Transfer(from identity.Identity, to identity.Identity, amount uint64, authority identity.Identity) error {
	m.Lock()
	defer m.Unlock()

	expected, ok := m.authorities[from]
	if !ok {
		expected = from
	}
	if authority != expected {
		return fault.ErrInvalidAuthority
	}

	if m.balances[from] < amount {
		return fault.ErrInsufficientFunds
	}

	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}
