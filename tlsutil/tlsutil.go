// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package tlsutil builds gRPC transport credentials out of the
// cert/key/CA file paths carried by config.TLSMaterial (spec §6). TLS
// material validation is explicitly out of scope (spec Non-goals) - these
// helpers only load and wire the files through to crypto/tls.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/veronymous/veronymous/verrors"
)

// ServerCredentials builds server-side transport credentials from a
// certificate and key. When clientCA is non-empty, client certificates
// are required and verified against it (mTLS), matching the issuer's
// "client_ca" option (spec §6).
func ServerCredentials(certFile, keyFile, clientCA string) (credentials.TransportCredentials, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not load server TLS material")
	}

	tlsConfig := &tls.Config{Certificates: []tls.Certificate{cert}}

	if clientCA != "" {
		pool, err := loadCertPool(clientCA)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return credentials.NewTLS(tlsConfig), nil
}

// ClientCredentials builds client-side transport credentials for dialing
// an mTLS-protected upstream (the issuer's Token-info endpoint, or a
// WireGuard manager). If certFile and keyFile are both empty, no client
// certificate is presented. If ca is also empty, this falls back to
// insecure transport credentials, for local development.
func ClientCredentials(certFile, keyFile, ca string) (credentials.TransportCredentials, error) {
	if certFile == "" && keyFile == "" && ca == "" {
		return insecure.NewCredentials(), nil
	}

	tlsConfig := &tls.Config{}

	if certFile != "" || keyFile != "" {
		cert, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, verrors.Wrap(verrors.KindInitialization, err, "could not load client TLS material")
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if ca != "" {
		pool, err := loadCertPool(ca)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	return credentials.NewTLS(tlsConfig), nil
}

func loadCertPool(caFile string) (*x509.CertPool, error) {
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, verrors.Wrap(verrors.KindInitialization, err, "could not read CA certificate")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, verrors.New(verrors.KindInitialization, "could not parse CA certificate")
	}

	return pool, nil
}
