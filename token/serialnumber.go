// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package token

import "crypto/sha256"

// SerialNumberDigestSize is the SHA-256 digest length used as the
// replay-detection key (spec §3 "SerialNumber").
const SerialNumberDigestSize = sha256.Size

// SerialNumberDigest returns SHA-256(compressed(S)), the replay-detection
// key for this token's serial number.
func (token EpochToken) SerialNumberDigest() [SerialNumberDigestSize]byte {
	return sha256.Sum256(token.SerialNumber.S.Bytes())
}
