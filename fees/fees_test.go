// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skytrade/rentald/fault"
	"github.com/skytrade/rentald/fees"
)

// worked example: 1_000_000 × 3 at 30% quota
func TestWorkedExample(t *testing.T) {

	expectedCost, err := fees.Cost(1000000, 3)
	assert.Nil(t, err, "cost error")
	assert.Equal(t, uint64(3000000), expectedCost, "wrong cost")

	feeQuota, receiverAmount := fees.Split(expectedCost, 0.3)
	assert.Equal(t, uint64(900000), feeQuota, "wrong fee")
	assert.Equal(t, uint64(2100000), receiverAmount, "wrong receiver amount")
}

// overflow and zero edge cases
func TestCost(t *testing.T) {

	testData := []struct {
		unitBaseCost uint64
		quantity     uint64
		expectedCost uint64
		err          error
	}{
		{0, 10, 0, nil},
		{10, 0, 0, nil},
		{1, 1, 1, nil},
		{1000000, 3, 3000000, nil},
		{math.MaxUint64, 1, math.MaxUint64, nil},
		{math.MaxUint64, 2, 0, fault.ErrArithmeticOverflow},
		{math.MaxUint64/2 + 1, 2, 0, fault.ErrArithmeticOverflow},
		{math.MaxUint64 / 2, 2, math.MaxUint64 - 1, nil},
	}

	for i, item := range testData {
		expectedCost, err := fees.Cost(item.unitBaseCost, item.quantity)
		assert.Equal(t, item.err, err, "%d: wrong error", i)
		assert.Equal(t, item.expectedCost, expectedCost, "%d: wrong cost", i)
	}
}

// near the top of the uint64 range the float64 product rounds; the
// fee must still never exceed the cost and a full quota must retain
// the whole payment
func TestQuotaBoundary(t *testing.T) {

	assert.Equal(t, uint64(math.MaxUint64), fees.Quota(math.MaxUint64, 1),
		"full quota does not retain the whole payment")
	assert.Equal(t, uint64(0), fees.Quota(math.MaxUint64, 0), "zero quota retains")

	quotas := []float64{0.3, 0.5, 0.9999999999999999, 1}
	costs := []uint64{
		1 << 53,
		1<<53 + 1,
		math.MaxUint64 / 2,
		math.MaxUint64 - 1,
		math.MaxUint64,
	}

	for _, quota := range quotas {
		for _, cost := range costs {
			feeQuota, receiverAmount := fees.Split(cost, quota)
			assert.True(t, feeQuota <= cost,
				"quota: %f  cost: %d  fee exceeds cost", quota, cost)
			assert.Equal(t, cost, feeQuota+receiverAmount,
				"quota: %f  cost: %d  split does not conserve", quota, cost)
		}
	}
}

// the split must always sum back to the expected cost
func TestSplitConservation(t *testing.T) {

	quotas := []float64{0, 0.1, 0.25, 0.3, 0.5, 0.9999, 1}
	costs := []uint64{1, 2, 3, 999, 1000000, 3000000, 123456789}

	for _, quota := range quotas {
		for _, cost := range costs {
			feeQuota, receiverAmount := fees.Split(cost, quota)
			assert.Equal(t, cost, feeQuota+receiverAmount,
				"quota: %f  cost: %d  split does not conserve", quota, cost)
			assert.True(t, feeQuota <= cost,
				"quota: %f  cost: %d  fee exceeds cost", quota, cost)
			assert.Equal(t, uint64(math.Floor(quota*float64(cost))), feeQuota,
				"quota: %f  cost: %d  fee not floored", quota, cost)
		}
	}
}
