// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run processes in the background
//
// a background process is any value implementing Run; all processes
// started together are stopped together by closing a shared shutdown
// channel
package background

// Process - type signature for a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for the set of started processes
type T struct {
	shutdown chan struct{}
	finished chan struct{}
	count    int
	done     chan struct{}
}

// Start - start up a set of background processes
func Start(processes Processes, args interface{}) *T {

	register := &T{
		shutdown: make(chan struct{}),
		finished: make(chan struct{}),
		count:    len(processes),
		done:     make(chan struct{}, len(processes)),
	}

	for _, p := range processes {
		go func(p Process) {
			p.Run(args, register.shutdown)
			register.done <- struct{}{}
		}(p)
	}
	return register
}

// StopAndWait - stop all background processes and wait for them to finish
func (t *T) StopAndWait() {
	close(t.shutdown)
	for i := 0; i < t.count; i += 1 {
		<-t.done
	}
	close(t.finished)
}
