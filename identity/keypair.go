// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"
)

// PrivateKey - signing key paired with an Identity
type PrivateKey ed25519.PrivateKey

// Generate - create a new identity and its signing key
func Generate(test bool) (Identity, PrivateKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if nil != err {
		return Identity{}, nil, err
	}
	id, err := New(publicKey, test, false)
	if nil != err {
		return Identity{}, nil, err
	}
	return id, PrivateKey(privateKey), nil
}

// Sign - sign a message with the private key
func (key PrivateKey) Sign(message []byte) Signature {
	return Signature(ed25519.Sign(ed25519.PrivateKey(key), message))
}
