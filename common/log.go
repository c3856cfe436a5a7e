// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package common

import (
	logging "github.com/ipfs/go-log"
)

// Logger is the package-wide structured logger. Call SetLogLevel to adjust
// verbosity; every subsystem in this module logs through this one instance
// or a named sub-logger derived from it.
var Logger = logging.Logger("veronymous")

// SetLogLevel adjusts the verbosity of the package logger. level is one of
// "debug", "info", "warn", "error", "dpanic", "panic", "fatal".
func SetLogLevel(level string) error {
	return logging.SetLogLevel("veronymous", level)
}
