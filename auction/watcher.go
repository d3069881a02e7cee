// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package auction

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/identity"
)

// mirror file layout produced by the auction house export
type mirrorRecord struct {
	Account identity.Identity `json:"account"`
	Auction Auction           `json:"auction"`
}

// Watcher - background process mirroring auction house exports
//
// the auction house drops one JSON file per listed asset into the
// mirror directory; each drop or rewrite is loaded into the local
// auction pool so settlement can resolve sellers without calling out
type Watcher struct {
	log       *logger.L
	directory string
	store     PoolLookup
}

// NewWatcher - create a mirror watcher over one directory
func NewWatcher(directory string) *Watcher {
	return &Watcher{
		log:       logger.New("auction"),
		directory: directory,
	}
}

// Run - background process loop
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {

	w.log.Info("starting…")

	// pick up files dropped while not running
	w.ScanDirectory()

	notify, err := fsnotify.NewWatcher()
	if nil != err {
		w.log.Errorf("notify create: error: %s", err)
		return
	}
	defer notify.Close()

	err = notify.Add(w.directory)
	if nil != err {
		w.log.Errorf("notify watch: %q  error: %s", w.directory, err)
		return
	}

loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event := <-notify.Events:
			if 0 == event.Op&(fsnotify.Create|fsnotify.Write) {
				continue loop
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue loop
			}
			err := w.LoadFile(event.Name)
			if nil != err {
				w.log.Errorf("load: %q  error: %s", event.Name, err)
			}

		case err := <-notify.Errors:
			w.log.Errorf("notify: error: %s", err)
		}
	}

	w.log.Info("stopped")
}

// ScanDirectory - load every mirror file currently present
func (w *Watcher) ScanDirectory() {
	files, err := filepath.Glob(filepath.Join(w.directory, "*.json"))
	if nil != err {
		w.log.Errorf("scan: %q  error: %s", w.directory, err)
		return
	}
	for _, file := range files {
		err := w.LoadFile(file)
		if nil != err {
			w.log.Errorf("load: %q  error: %s", file, err)
		}
	}
}

// LoadFile - mirror one auction export file into the local pool
func (w *Watcher) LoadFile(fileName string) error {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return err
	}

	record := mirrorRecord{}
	err = json.Unmarshal(data, &record)
	if nil != err {
		return err
	}

	w.store.Store(record.Account, &record.Auction)
	w.log.Debugf("mirrored auction: %s  seller: %s", record.Account, record.Auction.Seller)
	return nil
}
