// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// the central pool of the rental data store is a single LevelDB
// database; each exported pool is a single byte prefix over that
// database so that records of different types cannot clash
//
// the transaction wraps a LevelDB batch so that a group of writes
// either commits in full or not at all; reads inside a transaction see
// the pending writes of that transaction
package storage
