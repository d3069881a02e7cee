// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rental_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/fixtures"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/leafrecord"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/merkle"
	"github.com/skytrade/rentald/rental"
	"github.com/skytrade/rentald/settlement"
)

var (
	testNow   = time.Date(2020, 3, 1, 9, 45, 0, 0, time.UTC)
	testStart = "2020-03-01T10:00:00Z"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()

	rc := m.Run()

	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T) {
	err := fixtures.SetupStorage()
	assert.Nil(t, err, "storage setup error")
}

func teardown() {
	fixtures.TeardownStorage()
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testConfig() authority.Config {
	operator, _, _ := identity.Generate(true)
	feeAccount, _, _ := identity.Generate(true)
	mint, _, _ := identity.Generate(true)
	registry, _, _ := identity.Generate(true)
	return authority.Config{
		CentralizedOperator: operator,
		UnitBaseCost:        1000000,
		AdminQuota:          0.3,
		FeeAccount:          feeAccount,
		MintAddress:         mint,
		RentalRegistry:      registry,
	}
}

type testEnvironment struct {
	config   authority.Config
	funds    *ledger.Memory
	registry *rental.MemoryRegistry
	service  *rental.Service
	payer    identity.Identity
}

func newEnvironment(t *testing.T) *testEnvironment {
	config := testConfig()
	funds := ledger.NewMemory()
	registry := rental.NewMemoryRegistry()

	payer, _, err := identity.Generate(true)
	assert.Nil(t, err, "payer generate error")
	funds.Deposit(payer, 10000000)

	return &testEnvironment{
		config:   config,
		funds:    funds,
		registry: registry,
		service:  rental.New(config, funds, registry, settlement.RegistryVerifier{}, fixedClock{now: testNow}),
		payer:    payer,
	}
}

func (e *testEnvironment) mint(t *testing.T) (*escrow.Record, *leafrecord.Claim) {
	parcelID, _, _ := identity.Generate(true)
	record, claim, err := e.service.Mint(&rental.MintRequest{
		ParcelID:     parcelID,
		CreationTime: testStart,
		Payer:        e.payer,
		Quantity:     1,
		DataHash:     merkle.NewDigest([]byte("token metadata")),
		CreatorHash:  merkle.NewDigest([]byte("token creators")),
	})
	assert.Nil(t, err, "mint error")
	return record, claim
}

// a mint opens the escrow and appends a verifiable registry leaf
func TestMint(t *testing.T) {
	setup(t)
	defer teardown()

	e := newEnvironment(t)
	record, claim := e.mint(t)

	assert.Equal(t, e.payer, claim.Owner, "wrong leaf owner")
	assert.Equal(t, e.config.CentralizedOperator, claim.Delegate, "wrong leaf delegate")

	assert.Equal(t, uint64(1000000), record.ExpectedCost, "wrong cost")
	assert.Equal(t, uint64(9000000), e.funds.Balance(e.payer), "payer balance")
	assert.Equal(t, uint64(1000000), e.funds.Balance(record.CustodyAccount()), "custody balance")

	_, err := escrow.Get(record.ParcelID, testStart)
	assert.Nil(t, err, "escrow missing")

	// the returned claim proves against the live registry
	assetID := leafrecord.AssetID(e.config.RentalRegistry, claim.Nonce)
	proof := e.registry.ProofForLeaf(e.config.RentalRegistry, claim.Index)
	ok := merkle.VerifyPath(claim.Root, claim.LeafHash(assetID), proof, claim.Index)
	assert.True(t, ok, "claim does not verify")

	// the mint is tracked locally
	token, err := rental.TokenByAsset(assetID)
	assert.Nil(t, err, "token lookup error")
	assert.Equal(t, e.payer, token.Owner, "wrong tracked owner")
	assert.Equal(t, claim.Nonce, token.Nonce, "wrong tracked nonce")

	count := 0
	rental.Tokens(func(identity.Identity, *rental.Token) bool {
		count += 1
		return true
	})
	assert.Equal(t, 1, count, "wrong tracked token count")
}

// a failed registry mint refunds the payment and drops the escrow
func TestMintRegistryFailure(t *testing.T) {
	setup(t)
	defer teardown()

	e := newEnvironment(t)
	e.service = rental.New(e.config, e.funds, brokenRegistry{}, settlement.RegistryVerifier{}, fixedClock{now: testNow})

	parcelID, _, _ := identity.Generate(true)
	_, _, err := e.service.Mint(&rental.MintRequest{
		ParcelID:     parcelID,
		CreationTime: testStart,
		Payer:        e.payer,
		Quantity:     1,
	})
	assert.Equal(t, errRegistryDown, err, "registry failure swallowed")

	assert.Equal(t, uint64(10000000), e.funds.Balance(e.payer), "payer not refunded")

	_, err = escrow.Get(parcelID, testStart)
	assert.Equal(t, fault.ErrEscrowNotFound, err, "orphaned escrow left behind")

	_, err = rental.TokenByAsset(leafrecord.AssetID(e.config.RentalRegistry, 0))
	assert.Equal(t, fault.ErrRentalTokenNotFound, err, "phantom token tracked")
}

var errRegistryDown = fault.ProcessError("registry down")

type brokenRegistry struct{}

func (brokenRegistry) Mint(identity.Identity, identity.Identity, identity.Identity, merkle.Digest, merkle.Digest) (*leafrecord.Claim, error) {
	return nil, errRegistryDown
}

func (brokenRegistry) Transfer(identity.Identity, *leafrecord.Claim, identity.Identity, []merkle.Digest) error {
	return errRegistryDown
}

// a transfer hands the leaf to the receiver inside the registry
func TestTransfer(t *testing.T) {
	setup(t)
	defer teardown()

	e := newEnvironment(t)

	// a few extra leaves make the proof path non trivial
	e.mint(t)
	_, claim := e.mint(t)
	e.mint(t)

	receiver, _, _ := identity.Generate(true)
	tree := e.config.RentalRegistry

	// refresh to the registry's current root and path
	claim.Root = e.registry.Root(tree)
	proof := e.registry.ProofForLeaf(tree, claim.Index)

	err := e.service.Transfer(&rental.TransferRequest{
		Sender:   e.payer,
		Receiver: receiver,
		Tree:     tree,
		Claim:    *claim,
		Proof:    rental.PackProof(proof),
	})
	assert.Nil(t, err, "transfer error")

	// the receiver's claim now verifies, the sender's no longer does
	assetID := leafrecord.AssetID(tree, claim.Nonce)
	transferred := *claim
	transferred.Owner = receiver
	transferred.Root = e.registry.Root(tree)
	proof = e.registry.ProofForLeaf(tree, claim.Index)

	ok := merkle.VerifyPath(transferred.Root, transferred.LeafHash(assetID), proof, claim.Index)
	assert.True(t, ok, "receiver claim does not verify")

	ok = merkle.VerifyPath(transferred.Root, claim.LeafHash(assetID), proof, claim.Index)
	assert.False(t, ok, "sender claim still verifies")

	// the tracked token follows the new owner
	token, err := rental.TokenByAsset(assetID)
	assert.Nil(t, err, "token lookup error")
	assert.Equal(t, receiver, token.Owner, "tracked owner not updated")
}

// transfer validation rejects bad senders, trees, batches and claims
func TestTransferValidation(t *testing.T) {
	setup(t)
	defer teardown()

	e := newEnvironment(t)
	_, claim := e.mint(t)

	receiver, _, _ := identity.Generate(true)
	intruder, _, _ := identity.Generate(true)
	otherTree, _, _ := identity.Generate(true)
	tree := e.config.RentalRegistry

	claim.Root = e.registry.Root(tree)
	proof := rental.PackProof(e.registry.ProofForLeaf(tree, claim.Index))

	request := func() *rental.TransferRequest {
		return &rental.TransferRequest{
			Sender:   e.payer,
			Receiver: receiver,
			Tree:     tree,
			Claim:    *claim,
			Proof:    proof,
		}
	}

	r := request()
	r.Sender = intruder
	err := e.service.Transfer(r)
	assert.Equal(t, fault.ErrNotRentalTokenOwner, err, "intruder transfer accepted")

	r = request()
	r.Tree = otherTree
	err = e.service.Transfer(r)
	assert.Equal(t, fault.ErrInvalidRentalAddressPassed, err, "foreign tree accepted")

	r = request()
	r.Proof = append(r.Proof, 0x00)
	err = e.service.Transfer(r)
	assert.Equal(t, fault.ErrInvalidRemainingAccountsPassed, err, "ragged batch accepted")

	r = request()
	r.Claim.Nonce += 1
	err = e.service.Transfer(r)
	assert.Equal(t, fault.ErrInvalidLandNFTData, err, "forged claim accepted")
}
