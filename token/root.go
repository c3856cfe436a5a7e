// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package token

import (
	"github.com/veronymous/veronymous/crypto/ps"
	"github.com/veronymous/veronymous/curve"
	"github.com/veronymous/veronymous/verrors"
)

// RootCredential is the long-lived credential obtained from root-credential
// issuance (spec §4.5): a PS signature over a single hidden attribute
// tokenId. It never appears on the wire in this form except between a
// client and its own local storage.
type RootCredential struct {
	TokenID   curve.Scalar
	Signature ps.Signature
}

// Verify checks that Signature is a valid PS signature over [TokenID] under
// publicKey/params.
func (c RootCredential) Verify(publicKey ps.PublicKey, params ps.Params) (bool, error) {
	ok, err := c.Signature.Verify(params, publicKey, []curve.Scalar{c.TokenID})
	if err != nil {
		return false, verrors.Wrap(verrors.KindVerification, err, "could not verify root credential signature")
	}
	return ok, nil
}
