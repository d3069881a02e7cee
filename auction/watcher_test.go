// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package auction_test

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skytrade/rentald/auction"
	"github.com/skytrade/rentald/fixtures"
	"github.com/skytrade/rentald/identity"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()

	rc := m.Run()

	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func writeMirrorFile(t *testing.T, directory string, name string, account identity.Identity, a *auction.Auction) {
	payload := struct {
		Account identity.Identity `json:"account"`
		Auction *auction.Auction  `json:"auction"`
	}{
		Account: account,
		Auction: a,
	}
	data, err := json.Marshal(payload)
	assert.Nil(t, err, "marshal error")

	err = ioutil.WriteFile(filepath.Join(directory, name), data, 0600)
	assert.Nil(t, err, "write error")
}

// a directory scan mirrors every export file, skipping damaged ones
func TestWatcherScan(t *testing.T) {
	err := fixtures.SetupStorage()
	assert.Nil(t, err, "storage setup error")
	defer fixtures.TeardownStorage()

	directory, err := ioutil.TempDir("", "auction-mirror")
	assert.Nil(t, err, "tempdir error")
	defer os.RemoveAll(directory)

	account, _, _ := identity.Generate(true)
	a := makeAuction(t)
	writeMirrorFile(t, directory, "listed.json", account, a)

	// a damaged export must not stop the scan
	err = ioutil.WriteFile(filepath.Join(directory, "broken.json"), []byte("not json"), 0600)
	assert.Nil(t, err, "write error")

	auction.NewWatcher(directory).ScanDirectory()

	stored, err := auction.PoolLookup{}.Get(account)
	assert.Nil(t, err, "get error")
	assert.Equal(t, a, stored, "mirrored record mismatch")
}

// the background loop stops promptly on shutdown
func TestWatcherShutdown(t *testing.T) {
	err := fixtures.SetupStorage()
	assert.Nil(t, err, "storage setup error")
	defer fixtures.TeardownStorage()

	directory, err := ioutil.TempDir("", "auction-mirror")
	assert.Nil(t, err, "tempdir error")
	defer os.RemoveAll(directory)

	watcher := auction.NewWatcher(directory)

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		watcher.Run(nil, shutdown)
		close(done)
	}()

	close(shutdown)
	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "watcher did not stop")
	}
}
