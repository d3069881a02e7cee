// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/skytrade/rentald/fault"
)

// Transaction - group writes so they commit in full or not at all
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
}

// pending operation inside an open transaction
type pendingOp int

const (
	pendingPut pendingOp = iota
	pendingDelete
)

type pendingValue struct {
	op    pendingOp
	value []byte
}

type transaction struct {
	sync.Mutex
	inUse   bool
	db      *leveldb.DB
	batch   *leveldb.Batch
	pending map[string]pendingValue
}

func newTransaction(db *leveldb.DB, batch *leveldb.Batch) *transaction {
	return &transaction{
		db:    db,
		batch: batch,
	}
}

// Begin - start the store transaction
//
// only a single transaction can be open; operations on separate
// records are serialised here, matching the one-at-a-time execution
// model of the host ledger
func Begin() (Transaction, error) {
	poolData.RLock()
	trx := poolData.trx
	poolData.RUnlock()

	if nil == trx {
		return nil, fault.ErrNotInitialised
	}

	trx.Lock()
	if trx.inUse {
		trx.Unlock()
		return nil, fault.ErrTransactionInUse
	}
	trx.inUse = true
	trx.batch.Reset()
	trx.pending = make(map[string]pendingValue)
	trx.Unlock()

	return trx, nil
}

// Put - store a key/value pair inside the transaction
func (t *transaction) Put(p *PoolHandle, key []byte, value []byte) {
	prefixed := p.prefixKey(key)
	t.batch.Put(prefixed, value)
	t.pending[string(prefixed)] = pendingValue{op: pendingPut, value: value}
}

// Delete - remove a key inside the transaction
func (t *transaction) Delete(p *PoolHandle, key []byte) {
	prefixed := p.prefixKey(key)
	t.batch.Delete(prefixed)
	t.pending[string(prefixed)] = pendingValue{op: pendingDelete}
}

// Get - read a value, seeing this transaction's pending writes
func (t *transaction) Get(p *PoolHandle, key []byte) []byte {
	prefixed := p.prefixKey(key)
	if pv, ok := t.pending[string(prefixed)]; ok {
		if pendingDelete == pv.op {
			return nil
		}
		return pv.value
	}
	value, err := t.db.Get(prefixed, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	if nil != err {
		return nil
	}
	return value
}

// Has - check a key, seeing this transaction's pending writes
func (t *transaction) Has(p *PoolHandle, key []byte) bool {
	prefixed := p.prefixKey(key)
	if pv, ok := t.pending[string(prefixed)]; ok {
		return pendingPut == pv.op
	}
	ok, err := t.db.Has(prefixed, nil)
	if nil != err {
		return false
	}
	return ok
}

// Commit - write all pending operations to the database
func (t *transaction) Commit() error {
	t.Lock()
	defer t.Unlock()

	err := t.db.Write(t.batch, nil)
	t.batch.Reset()
	t.pending = nil
	t.inUse = false
	return err
}

// Abort - discard all pending operations
func (t *transaction) Abort() {
	t.Lock()
	defer t.Unlock()

	t.batch.Reset()
	t.pending = nil
	t.inUse = false
}
