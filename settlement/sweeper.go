// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settlement

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/escrow"
)

// sweep timing
const (
	sweepInterval = 60 * time.Second

	// settlement submissions per second and burst
	sweepRate  = 10
	sweepBurst = 50
)

// ExpiredHandler - called for each expired escrow found by a sweep
//
// the handler is expected to gather the current ownership proof and
// submit a settlement; errors are the handler's to deal with
type ExpiredHandler func(record *escrow.Record)

// Sweeper - background recovery sweep over open escrows
//
// any escrow left unsettled past its window, for example because the
// original settlement submission was lost, is picked up here
type Sweeper struct {
	log     *logger.L
	clock   Clock
	limiter *rate.Limiter
	handler ExpiredHandler
}

// NewSweeper - create the sweep process
func NewSweeper(clock Clock, handler ExpiredHandler) *Sweeper {
	return &Sweeper{
		log:     logger.New("sweeper"),
		clock:   clock,
		limiter: rate.NewLimiter(rate.Limit(sweepRate), sweepBurst),
		handler: handler,
	}
}

// Run - background process loop
func (s *Sweeper) Run(args interface{}, shutdown <-chan struct{}) {

	s.log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case <-time.After(sweepInterval):
			s.sweep()
		}
	}

	s.log.Info("stopped")
}

// one pass over all open escrows
func (s *Sweeper) sweep() {

	now := s.clock.Now()
	found := 0

	escrow.Scan(func(record *escrow.Record) bool {
		if !record.Expired(now) {
			return true
		}
		if !s.limiter.Allow() {
			// over rate, the next sweep will retry
			return false
		}
		found += 1
		s.handler(record)
		return true
	})

	if found > 0 {
		s.log.Infof("sweep: %d expired escrows handed off", found)
	}
}
