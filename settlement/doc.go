// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package settlement - split and release escrowed rental payments
//
// an escrow is Active from the moment it is opened; a settlement call
// moves it through Settling and, on success, deletes it (Closed); any
// failure aborts the enclosing transaction and leaves the escrow
// Active with no partial transfer observable
//
// the payout receiver is resolved from the parcel's current custody:
// a simple wallet is paid directly, an auction-held parcel pays the
// auction's seller, any other custodian is never trusted
package settlement
