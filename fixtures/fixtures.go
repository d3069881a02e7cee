// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Sky Trade Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test environment setup
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/skytrade/rentald/storage"
)

const (
	logDir      = "testing-log"
	databaseDir = "testing-rental.leveldb"

	// LogCategory - tag for test logging output
	LogCategory = "testing"
)

func removeFiles(name string) {
	path, _ := filepath.Abs(name)
	_ = os.RemoveAll(path)
}

// SetupTestLogger - start logging to a scratch directory
func SetupTestLogger() {
	removeFiles(logDir)
	_ = os.Mkdir(logDir, 0700)

	logging := logger.Configuration{
		Directory: logDir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the scratch directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles(logDir)
}

// SetupStorage - open a scratch database
func SetupStorage() error {
	removeFiles(databaseDir)
	return storage.Initialise(databaseDir, storage.ReadWrite)
}

// TeardownStorage - close and remove the scratch database
func TeardownStorage() {
	storage.Finalise()
	removeFiles(databaseDir)
}
