// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package tlsutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCredentialsFallsBackToInsecure(t *testing.T) {
	creds, err := ClientCredentials("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "insecure", creds.Info().SecurityProtocol)
}

func TestClientCredentialsFailsOnMissingCertFile(t *testing.T) {
	_, err := ClientCredentials("/nonexistent/cert.pem", "/nonexistent/key.pem", "")
	assert.Error(t, err)
}

func TestServerCredentialsFailsOnMissingCertFile(t *testing.T) {
	_, err := ServerCredentials("/nonexistent/cert.pem", "/nonexistent/key.pem", "")
	assert.Error(t, err)
}
