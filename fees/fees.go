// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fees - rental cost and platform fee arithmetic
//
// all amounts are integers in the smallest unit of the payment mint;
// only the admin quota is fractional and its product is truncated
// toward zero so the receiver amount can never be negative
package fees

import (
	"github.com/skytrade/rentald/fault"
)

// Cost - total rental cost for a number of rental units
//
// fails with ErrArithmeticOverflow when the product exceeds uint64
func Cost(unitBaseCost uint64, quantity uint64) (uint64, error) {
	if 0 == unitBaseCost || 0 == quantity {
		return 0, nil
	}
	expectedCost := unitBaseCost * quantity
	if expectedCost/quantity != unitBaseCost {
		return 0, fault.ErrArithmeticOverflow
	}
	return expectedCost, nil
}

// Quota - platform fee retained from a payment
//
// computed as floor(adminQuota × expectedCost); adminQuota is held in
// [0,1] by the config store so the result never exceeds expectedCost
//
// above 2^53 the float64 product loses precision and a product at
// 2^64 makes the conversion back to uint64 undefined, so a full
// quota short-circuits and the result is clamped to expectedCost
func Quota(expectedCost uint64, adminQuota float64) uint64 {
	if adminQuota >= 1 {
		return expectedCost
	}
	feeQuota := uint64(adminQuota * float64(expectedCost))
	if feeQuota > expectedCost {
		feeQuota = expectedCost
	}
	return feeQuota
}

// Split - fee and receiver amounts for a payment
func Split(expectedCost uint64, adminQuota float64) (feeQuota uint64, receiverAmount uint64) {
	feeQuota = Quota(expectedCost, adminQuota)
	receiverAmount = expectedCost - feeQuota
	return feeQuota, receiverAmount
}
