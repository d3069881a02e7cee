// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the external value transfer service
//
// the rental core never moves value itself; it issues transfer
// instructions against this narrow interface and relies on the host
// ledger for the actual movement
package ledger

import (
	"github.com/skytrade/rentald/identity"
)

// Ledger - transfer instruction sink
//
// Transfer moves amount from one account to another; the authority is
// the identity entitled to draw from the source account and the
// implementation must reject a mismatch
type Ledger interface {
	Transfer(from identity.Identity, to identity.Identity, amount uint64, authority identity.Identity) error
}
