// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle - merkle digests, tree building and proof path
// verification for the land parcel registry
package merkle

// FullTree - compute a full merkle tree from a set of leaf digests
//
// structure is:
//   1. N * leaf digests
//   2. level 1..m digests
//   3. merkle root digest
func FullTree(leaves []Digest) []Digest {

	// compute length of ids + all tree levels including root
	leafCount := len(leaves)

	totalLength := 1 // all leaves + space for the final root
	for n := leafCount; n > 1; n = (n + 1) / 2 {
		totalLength += n
	}

	// add initial leaves
	tree := make([]Digest, totalLength)
	copy(tree[:], leaves)

	n := leafCount
	j := 0
	for workLength := leafCount; workLength > 1; workLength = (workLength + 1) / 2 {
		for i := 0; i < workLength; i += 2 {
			k := j + 1
			if i+1 == workLength {
				k = j // compensate for odd number
			}
			tree[n] = NewDigest(append(tree[j][:], tree[k][:]...))
			n += 1
			j = k + 1
		}
	}
	return tree
}

// Root - the root digest of a tree produced by FullTree
func Root(tree []Digest) Digest {
	if 0 == len(tree) {
		return Digest{}
	}
	return tree[len(tree)-1]
}

// PathForLeaf - extract the proof path for one leaf
//
// the returned path lists the sibling digest at each level from leaf
// to root; pairing follows the FullTree rule where an odd tail node is
// paired with itself
func PathForLeaf(leaves []Digest, index uint32) []Digest {

	if int(index) >= len(leaves) {
		return nil
	}

	path := []Digest{}

	level := make([]Digest, len(leaves))
	copy(level, leaves)

	i := int(index)
	for len(level) > 1 {
		sibling := i ^ 1
		if sibling >= len(level) {
			sibling = i // odd tail is paired with itself
		}
		path = append(path, level[sibling])

		next := make([]Digest, (len(level)+1)/2)
		for n := 0; n < len(next); n += 1 {
			left := 2 * n
			right := left + 1
			if right >= len(level) {
				right = left
			}
			next[n] = NewDigest(append(level[left][:], level[right][:]...))
		}
		level = next
		i /= 2
	}

	return path
}

// VerifyPath - recompute the root from a leaf digest and its proof path
//
// the index selects the side of each pairing: a clear bit places the
// running digest on the left of its sibling
func VerifyPath(root Digest, leaf Digest, path []Digest, index uint32) bool {

	h := leaf
	i := index
	for _, sibling := range path {
		if 0 == i&1 {
			h = NewDigest(append(h[:], sibling[:]...))
		} else {
			h = NewDigest(append(sibling[:], h[:]...))
		}
		i >>= 1
	}
	return root == h
}
