// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity - ledger identities
//
// an identity is an ed25519 public key with a small set of flags; the
// text form is a base58 encoding of:
//
//	varint(key variant) || public key || first 4 bytes of sha3-256 checksum
//
// the key variant carries the algorithm in its upper bits and the
// identity / test / program flags in its lower bits
package identity

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/util"
)

// supported key algorithms
const (
	ED25519 = iota + 1
	// end of list (one greater than last item)
	algorithmLimit = iota + 1
)

// miscellaneous constants
const (
	// KeyLength - number of bytes in a public key
	KeyLength = ed25519.PublicKeySize

	checksumLength = 4

	// bits in key variant starting from LSB
	publicKeyCode  = 0x01
	testKeyCode    = 0x02
	programKeyCode = 0x04

	algorithmShift = 4 // shift to get algorithm
)

// KeyBytes - fixed size public key storage
type KeyBytes [KeyLength]byte

// Identity - an on-ledger identity
//
// comparable with == and usable as a map key
type Identity struct {
	Test      bool
	Program   bool // an executable program identity, not a simple wallet
	PublicKey KeyBytes
}

// Signature - raw signature bytes
type Signature []byte

// New - create an identity from a raw public key
func New(publicKey []byte, test bool, program bool) (Identity, error) {
	if KeyLength != len(publicKey) {
		return Identity{}, fault.ErrInvalidKeyLength
	}
	id := Identity{
		Test:    test,
		Program: program,
	}
	copy(id.PublicKey[:], publicKey)
	return id, nil
}

// IsZero - detect the unset identity
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// keyVariant - assemble the variant bits for this identity
func (id Identity) keyVariant() uint64 {
	keyVariant := uint64(ED25519)<<algorithmShift | publicKeyCode
	if id.Test {
		keyVariant |= testKeyCode
	}
	if id.Program {
		keyVariant |= programKeyCode
	}
	return keyVariant
}

// Bytes - binary form: varint(key variant) || public key
//
// used as the canonical form for record packing and leaf hashing
func (id Identity) Bytes() []byte {
	buffer := util.ToVarint64(id.keyVariant())
	return append(buffer, id.PublicKey[:]...)
}

// String - base58 text form including the checksum
func (id Identity) String() string {
	buffer := id.Bytes()
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// MarshalText - convert to base58 text
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - convert from base58 text
func (id *Identity) UnmarshalText(s []byte) error {
	decoded, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	*id = decoded
	return nil
}

// CheckSignature - verify a signature over a message by this identity
func (id Identity) CheckSignature(message []byte, signature Signature) error {
	if ed25519.SignatureSize != len(signature) {
		return fault.ErrInvalidAuthority
	}
	if !ed25519.Verify(id.PublicKey[:], message, signature) {
		return fault.ErrInvalidAuthority
	}
	return nil
}

// FromBase58 - convert a base58 encoded string to an identity
func FromBase58(encoded string) (Identity, error) {
	decoded, err := base58.Decode(encoded)
	if nil != err {
		return Identity{}, fault.ErrCannotDecodeIdentity
	}

	// parse the key variant
	keyVariant, keyVariantLength := util.FromVarint64(decoded)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return Identity{}, fault.ErrCannotDecodeIdentity
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm < ED25519 || keyAlgorithm >= algorithmLimit {
		return Identity{}, fault.ErrCannotDecodeIdentity
	}

	keyLength := len(decoded) - keyVariantLength - checksumLength
	if KeyLength != keyLength {
		return Identity{}, fault.ErrInvalidKeyLength
	}

	// verify checksum
	checksumStart := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return Identity{}, fault.ErrChecksumMismatch
	}

	id := Identity{
		Test:    0 != keyVariant&testKeyCode,
		Program: 0 != keyVariant&programKeyCode,
	}
	copy(id.PublicKey[:], decoded[keyVariantLength:checksumStart])
	return id, nil
}

// FromBytes - convert the canonical binary form to an identity
func FromBytes(buffer []byte) (Identity, int, error) {
	keyVariant, keyVariantLength := util.FromVarint64(buffer)
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return Identity{}, 0, fault.ErrCannotDecodeIdentity
	}

	keyAlgorithm := keyVariant >> algorithmShift
	if keyAlgorithm < ED25519 || keyAlgorithm >= algorithmLimit {
		return Identity{}, 0, fault.ErrCannotDecodeIdentity
	}

	if len(buffer) < keyVariantLength+KeyLength {
		return Identity{}, 0, fault.ErrRecordTooShort
	}

	id := Identity{
		Test:    0 != keyVariant&testKeyCode,
		Program: 0 != keyVariant&programKeyCode,
	}
	copy(id.PublicKey[:], buffer[keyVariantLength:keyVariantLength+KeyLength])
	return id, keyVariantLength + KeyLength, nil
}
