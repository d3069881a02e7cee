// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rental

import (
	"sync"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/leafrecord"
	"github.com/skytrade/rentald/merkle"
)

// Registry - the external compressed asset registry
//
// the registry owns the leaves; this service only asks it to append
// one or to hand one to a new owner
type Registry interface {
	Mint(tree identity.Identity, owner identity.Identity, delegate identity.Identity, dataHash merkle.Digest, creatorHash merkle.Digest) (*leafrecord.Claim, error)
	Transfer(tree identity.Identity, claim *leafrecord.Claim, newOwner identity.Identity, proof []merkle.Digest) error
}

// MemoryRegistry - in-process registry for the local chain
//
// keeps one leaf list per tree identity and recomputes the root on
// every change; the production registry lives outside this process
type MemoryRegistry struct {
	sync.Mutex
	trees map[identity.Identity][]merkle.Digest
}

// NewMemoryRegistry - create an empty registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		trees: make(map[identity.Identity][]merkle.Digest),
	}
}

// Mint - append one leaf and return its claim
func (r *MemoryRegistry) Mint(
	tree identity.Identity,
	owner identity.Identity,
	delegate identity.Identity,
	dataHash merkle.Digest,
	creatorHash merkle.Digest,
) (*leafrecord.Claim, error) {
	r.Lock()
	defer r.Unlock()

	leaves := r.trees[tree]

	claim := &leafrecord.Claim{
		Index:       uint32(len(leaves)),
		Nonce:       uint64(len(leaves)),
		DataHash:    dataHash,
		CreatorHash: creatorHash,
		Owner:       owner,
		Delegate:    delegate,
	}

	assetID := leafrecord.AssetID(tree, claim.Nonce)
	leaves = append(leaves, claim.LeafHash(assetID))
	r.trees[tree] = leaves

	claim.Root = merkle.Root(merkle.FullTree(leaves))
	return claim, nil
}

// Transfer - replace a leaf with one owned by the new owner
//
// the claim must reproduce the stored leaf exactly; the proof path is
// already checked by the caller so only leaf equality matters here
func (r *MemoryRegistry) Transfer(
	tree identity.Identity,
	claim *leafrecord.Claim,
	newOwner identity.Identity,
	proof []merkle.Digest,
) error {
	r.Lock()
	defer r.Unlock()

	leaves := r.trees[tree]
	if uint32(len(leaves)) <= claim.Index {
		return fault.ErrInvalidLandNFTData
	}

	assetID := leafrecord.AssetID(tree, claim.Nonce)
	if leaves[claim.Index] != claim.LeafHash(assetID) {
		return fault.ErrInvalidLandNFTData
	}

	transferred := *claim
	transferred.Owner = newOwner
	leaves[claim.Index] = transferred.LeafHash(assetID)

	return nil
}

// ProofForLeaf - current proof path of one leaf
func (r *MemoryRegistry) ProofForLeaf(tree identity.Identity, index uint32) []merkle.Digest {
	r.Lock()
	defer r.Unlock()
	return merkle.PathForLeaf(r.trees[tree], index)
}

// Root - current root of one tree
func (r *MemoryRegistry) Root(tree identity.Identity) merkle.Digest {
	r.Lock()
	defer r.Unlock()
	return merkle.Root(merkle.FullTree(r.trees[tree]))
}
