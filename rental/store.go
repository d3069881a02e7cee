// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rental

import (
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/storage"
	"github.com/skytrade/rentald/util"
)

// Token - locally tracked rental token leaf
//
// the registry holds the authoritative leaf; this record only keeps
// enough to list minted tokens and follow ownership locally
type Token struct {
	Tree  identity.Identity `json:"tree"`
	Owner identity.Identity `json:"owner"`
	Nonce uint64            `json:"nonce"`
}

// TokenByAsset - fetch the tracked token for one asset identity
func TokenByAsset(assetID identity.Identity) (*Token, error) {
	packed := storage.Pool.Rentals.Get(assetID.Bytes())
	if nil == packed {
		return nil, fault.ErrRentalTokenNotFound
	}
	return unpackToken(packed)
}

// Tokens - iterate over all tracked rental tokens
func Tokens(fn func(assetID identity.Identity, token *Token) bool) {
	storage.Pool.Rentals.Scan(func(key []byte, value []byte) bool {
		assetID, _, err := identity.FromBytes(key)
		if nil != err {
			return true // skip damaged records
		}
		token, err := unpackToken(value)
		if nil != err {
			return true
		}
		return fn(assetID, token)
	})
}

// overwrite the tracked token for one asset identity
func recordToken(assetID identity.Identity, token *Token) {
	storage.Pool.Rentals.Put(assetID.Bytes(), packToken(token))
}

func packToken(token *Token) []byte {
	message := token.Tree.Bytes()
	message = append(message, token.Owner.Bytes()...)
	message = append(message, util.ToVarint64(token.Nonce)...)
	return message
}

func unpackToken(buffer []byte) (*Token, error) {

	token := &Token{}
	n := 0

	for _, field := range []*identity.Identity{&token.Tree, &token.Owner} {
		id, used, err := identity.FromBytes(buffer[n:])
		if nil != err {
			return nil, err
		}
		*field = id
		n += used
	}

	nonce, used := util.FromVarint64(buffer[n:])
	if 0 == used {
		return nil, fault.ErrRecordTooShort
	}
	token.Nonce = nonce

	return token, nil
}
