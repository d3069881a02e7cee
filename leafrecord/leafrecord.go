// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package leafrecord - ownership leaves of the compressed asset registry
//
// a leaf claim is a caller supplied description of one asset's current
// ownership state; the claim is only trusted after its reconstructed
// leaf digest verifies against the registry's merkle root
package leafrecord

import (
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/merkle"
	"github.com/skytrade/rentald/util"
)

// current leaf schema version
const leafVersion = byte(1)

// tag for asset identity derivation
var assetIDTag = []byte("registry-asset")

// Claim - caller supplied ownership state of one registry leaf
type Claim struct {
	Index       uint32            `json:"index"`
	Nonce       uint64            `json:"nonce"`
	Root        merkle.Digest     `json:"root"`
	DataHash    merkle.Digest     `json:"dataHash"`
	CreatorHash merkle.Digest     `json:"creatorHash"`
	Owner       identity.Identity `json:"owner"`
	Delegate    identity.Identity `json:"delegate"`
}

// AssetID - derive the registry asset identity for one leaf position
//
// the derivation binds the asset to its registry tree and nonce so a
// claim cannot be replayed against a different parcel
func AssetID(tree identity.Identity, nonce uint64) identity.Identity {
	message := append([]byte{}, assetIDTag...)
	message = append(message, tree.Bytes()...)
	message = append(message, util.ToVarint64(nonce)...)
	digest := merkle.NewDigest(message)

	id, _ := identity.New(digest[:], tree.Test, false)
	return id
}

// LeafHash - reconstruct the leaf digest for this claim
//
// the digest covers the schema version, the derived asset identity,
// the owner and delegate, the nonce and both metadata hashes; any
// forged byte changes the digest and fails proof verification
func (claim *Claim) LeafHash(assetID identity.Identity) merkle.Digest {
	message := []byte{leafVersion}
	message = append(message, assetID.Bytes()...)
	message = append(message, claim.Owner.Bytes()...)
	message = append(message, claim.Delegate.Bytes()...)
	message = append(message, util.ToVarint64(claim.Nonce)...)
	message = append(message, claim.DataHash[:]...)
	message = append(message, claim.CreatorHash[:]...)
	return merkle.NewDigest(message)
}
