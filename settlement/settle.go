// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/leafrecord"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/merkle"
	"github.com/skytrade/rentald/storage"
)

// Clock - the trusted external time source
//
// all timestamp comparisons in one settlement use a single reading
type Clock interface {
	Now() time.Time
}

// ProofVerifier - the external merkle proof primitive of the registry
type ProofVerifier interface {
	Verify(root merkle.Digest, leafHash merkle.Digest, proof []merkle.Digest, index uint32) bool
}

// SystemClock - Clock reading the local wall clock
type SystemClock struct{}

// Now - current wall clock time
func (SystemClock) Now() time.Time { return time.Now() }

// RegistryVerifier - ProofVerifier over the in-process merkle rules
//
// the production registry performs this check itself; this
// implementation backs the local chain and tests
type RegistryVerifier struct{}

// Verify - recompute the root from the leaf and proof path
func (RegistryVerifier) Verify(root merkle.Digest, leafHash merkle.Digest, proof []merkle.Digest, index uint32) bool {
	return merkle.VerifyPath(root, leafHash, proof, index)
}

// Request - one settlement attempt
type Request struct {
	ParcelID     identity.Identity `json:"parcelId"`
	CreationTime string            `json:"creationTime"`

	// ownership claim and its opaque proof path
	Claim leafrecord.Claim  `json:"claim"`
	Tree  identity.Identity `json:"tree"`
	Proof []merkle.Digest   `json:"proof"`

	// program owning the claim owner's account; zero for a wallet
	OwningProgram identity.Identity `json:"owningProgram"`

	// caller supplied payout targets, checked against config and custody
	PaymentReceiver identity.Identity `json:"paymentReceiver"`
	FeeAccount      identity.Identity `json:"feeAccount"`
	Mint            identity.Identity `json:"mint"`
}

// Settlement - the engine with its external collaborators
type Settlement struct {
	config   authority.Config
	transfer ledger.Ledger
	verifier ProofVerifier
	auctions auction.Lookup
	clock    Clock
	log      *logger.L
}

// New - create a settlement engine
func New(
	config authority.Config,
	transferService ledger.Ledger,
	verifier ProofVerifier,
	auctions auction.Lookup,
	clock Clock,
) *Settlement {
	return &Settlement{
		config:   config,
		transfer: transferService,
		verifier: verifier,
		auctions: auctions,
		clock:    clock,
		log:      logger.New("settlement"),
	}
}

// Settle - run one settlement to completion
//
// on success the fee share is paid to the configured fee account, the
// remainder to the resolved receiver, and the escrow is deleted; on
// any failure the escrow and its funds are untouched
func (s *Settlement) Settle(request *Request) error {

	record, err := escrow.Get(request.ParcelID, request.CreationTime)
	if nil != err {
		return err
	}

	// single authoritative clock reading for this settlement
	now := s.clock.Now()
	if !record.Expired(now) {
		return fault.ErrInvalidTransferTime
	}

	if request.FeeAccount != s.config.FeeAccount {
		return fault.ErrInvalidReceiver
	}
	if request.Mint != s.config.MintAddress {
		return fault.ErrInvalidMint
	}

	err = s.verifyLeaf(&request.Claim, request.Tree, request.Proof, record)
	if nil != err {
		return err
	}

	custody, err := ResolveCustody(s.config, request.Claim.Owner, request.OwningProgram, s.auctions)
	if nil != err {
		return err
	}
	receiver, err := custody.Receiver()
	if nil != err {
		return err
	}
	if receiver != request.PaymentReceiver {
		return fault.ErrInvalidReceiver
	}

	custodyAccount := record.CustodyAccount()
	receiverAmount := record.ExpectedCost - record.FeeQuota

	trx, err := storage.Begin()
	if nil != err {
		return err
	}

	// both transfers draw from custody under the escrow's own
	// authority, never a user key
	err = s.transfer.Transfer(custodyAccount, request.FeeAccount, record.FeeQuota, custodyAccount)
	if nil != err {
		trx.Abort()
		return err
	}

	err = s.transfer.Transfer(custodyAccount, receiver, receiverAmount, custodyAccount)
	if nil != err {
		// reverse the orphaned fee transfer
		_ = s.transfer.Transfer(request.FeeAccount, custodyAccount, record.FeeQuota, request.FeeAccount)
		trx.Abort()
		return err
	}

	escrow.Close(record, trx)

	err = trx.Commit()
	if nil != err {
		_ = s.transfer.Transfer(request.FeeAccount, custodyAccount, record.FeeQuota, request.FeeAccount)
		_ = s.transfer.Transfer(receiver, custodyAccount, receiverAmount, receiver)
		return err
	}

	s.log.Infof("settled: parcel: %s  window: %s  fee: %d  receiver: %s  amount: %d",
		record.ParcelID, record.CreationTime, record.FeeQuota, receiver, receiverAmount)
	return nil
}

// verifyLeaf - trust the ownership claim only after proof verification
//
// rejects a claim whose derived asset is not the escrowed parcel and
// any claim whose reconstructed leaf digest fails the registry proof
func (s *Settlement) verifyLeaf(
	claim *leafrecord.Claim,
	tree identity.Identity,
	proof []merkle.Digest,
	record *escrow.Record,
) error {

	assetID := leafrecord.AssetID(tree, claim.Nonce)
	if assetID != record.ParcelID {
		return fault.ErrInvalidLandNFTData
	}

	leafHash := claim.LeafHash(assetID)
	if !s.verifier.Verify(claim.Root, leafHash, proof, claim.Index) {
		return fault.ErrInvalidLandNFTData
	}

	return nil
}
