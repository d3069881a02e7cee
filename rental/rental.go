// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rental - minting and transferring rental tokens
//
// a rental token is a registry leaf minted to the renter for one
// parcel and one window; minting opens the escrow that pays for the
// window and transfer hands the leaf to a new owner while the window
// is still running
package rental

import (
	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/authority"
	"github.com/skytrade/rentald/escrow"
	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/identity"
	"github.com/skytrade/rentald/leafrecord"
	"github.com/skytrade/rentald/ledger"
	"github.com/skytrade/rentald/merkle"
	"github.com/skytrade/rentald/settlement"
	"github.com/skytrade/rentald/storage"
)

// MintRequest - one rental token mint
type MintRequest struct {
	ParcelID     identity.Identity `json:"parcelId"`
	CreationTime string            `json:"creationTime"`
	Payer        identity.Identity `json:"payer"`
	Quantity     uint64            `json:"quantity"`

	// metadata hashes of the token to mint
	DataHash    merkle.Digest `json:"dataHash"`
	CreatorHash merkle.Digest `json:"creatorHash"`
}

// TransferRequest - hand a live rental token to a new owner
type TransferRequest struct {
	Sender   identity.Identity `json:"sender"`
	Receiver identity.Identity `json:"receiver"`
	Tree     identity.Identity `json:"tree"`
	Claim    leafrecord.Claim  `json:"claim"`

	// flat batch of packed proof digests
	Proof []byte `json:"proof"`
}

// Service - rental token operations and their collaborators
type Service struct {
	config   authority.Config
	transfer ledger.Ledger
	registry Registry
	verifier settlement.ProofVerifier
	clock    settlement.Clock
	log      *logger.L
}

// New - create the rental token service
func New(
	config authority.Config,
	transferService ledger.Ledger,
	registry Registry,
	verifier settlement.ProofVerifier,
	clock settlement.Clock,
) *Service {
	return &Service{
		config:   config,
		transfer: transferService,
		registry: registry,
		verifier: verifier,
		clock:    clock,
		log:      logger.New("rental"),
	}
}

// Mint - open the escrow and mint the rental token
//
// the token is minted to the payer with the central operator as
// delegate; a failed registry mint refunds the payment and removes
// the escrow so either both the token and the escrow exist or neither
func (s *Service) Mint(request *MintRequest) (*escrow.Record, *leafrecord.Claim, error) {

	record, err := escrow.Open(
		s.config,
		s.transfer,
		s.clock.Now(),
		request.ParcelID,
		request.CreationTime,
		request.Payer,
		request.Quantity,
	)
	if nil != err {
		return nil, nil, err
	}

	claim, err := s.registry.Mint(
		s.config.RentalRegistry,
		request.Payer,
		s.config.CentralizedOperator,
		request.DataHash,
		request.CreatorHash,
	)
	if nil != err {
		s.rollback(record, request.Payer)
		return nil, nil, err
	}

	assetID := leafrecord.AssetID(s.config.RentalRegistry, claim.Nonce)
	recordToken(assetID, &Token{
		Tree:  s.config.RentalRegistry,
		Owner: request.Payer,
		Nonce: claim.Nonce,
	})

	s.log.Infof("minted: parcel: %s  window: %s  owner: %s  cost: %d",
		record.ParcelID, record.CreationTime, request.Payer, record.ExpectedCost)
	return record, claim, nil
}

// Transfer - move a rental token to a new owner
//
// only the current leaf owner may transfer and only leaves of the
// configured rental registry are accepted; the claim must carry a
// valid proof for its stated root
func (s *Service) Transfer(request *TransferRequest) error {

	if request.Claim.Owner != request.Sender {
		return fault.ErrNotRentalTokenOwner
	}

	if request.Tree != s.config.RentalRegistry {
		return fault.ErrInvalidRentalAddressPassed
	}

	proof, err := UnpackProof(request.Proof)
	if nil != err {
		return err
	}

	assetID := leafrecord.AssetID(request.Tree, request.Claim.Nonce)
	leafHash := request.Claim.LeafHash(assetID)
	if !s.verifier.Verify(request.Claim.Root, leafHash, proof, request.Claim.Index) {
		return fault.ErrInvalidLandNFTData
	}

	err = s.registry.Transfer(request.Tree, &request.Claim, request.Receiver, proof)
	if nil != err {
		return err
	}

	recordToken(assetID, &Token{
		Tree:  request.Tree,
		Owner: request.Receiver,
		Nonce: request.Claim.Nonce,
	})

	s.log.Infof("transferred: asset: %s  from: %s  to: %s", assetID, request.Sender, request.Receiver)
	return nil
}

// UnpackProof - split a flat batch of packed proof digests
//
// the batch must be an exact sequence of digests, anything ragged is
// rejected before any proof work happens
func UnpackProof(batch []byte) ([]merkle.Digest, error) {
	if 0 != len(batch)%merkle.DigestLength {
		return nil, fault.ErrInvalidRemainingAccountsPassed
	}

	proof := make([]merkle.Digest, len(batch)/merkle.DigestLength)
	for i := range proof {
		copy(proof[i][:], batch[i*merkle.DigestLength:])
	}
	return proof, nil
}

// PackProof - flatten a proof path for submission
func PackProof(proof []merkle.Digest) []byte {
	batch := make([]byte, 0, len(proof)*merkle.DigestLength)
	for _, digest := range proof {
		batch = append(batch, digest[:]...)
	}
	return batch
}

// undo a committed escrow open after a failed registry mint
func (s *Service) rollback(record *escrow.Record, payer identity.Identity) {

	trx, err := storage.Begin()
	if nil != err {
		s.log.Errorf("rollback: transaction: error: %s", err)
		return
	}

	custody := record.CustodyAccount()
	err = s.transfer.Transfer(custody, payer, record.ExpectedCost, custody)
	if nil != err {
		trx.Abort()
		s.log.Errorf("rollback: refund: error: %s", err)
		return
	}

	escrow.Close(record, trx)

	err = trx.Commit()
	if nil != err {
		_ = s.transfer.Transfer(payer, custody, record.ExpectedCost, payer)
		s.log.Errorf("rollback: commit: error: %s", err)
	}
}
