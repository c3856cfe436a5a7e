// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Command veronymous-client obtains a root credential from a token
// issuer and presents derived epoch tokens to a router agent (spec §4.5,
// §4.6).
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"

	"github.com/veronymous/veronymous/client"
	"github.com/veronymous/veronymous/connection"
	"github.com/veronymous/veronymous/tlsutil"
	"github.com/veronymous/veronymous/token"
)

func main() {
	app := &cli.App{
		Name:  "veronymous-client",
		Usage: "obtain a root credential and connect through a router agent",
		Commands: []*cli.Command{
			obtainCommand(),
			connectCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func obtainCommand() *cli.Command {
	return &cli.Command{
		Name:  "obtain",
		Usage: "obtain a root credential from a token issuer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "issuer", Required: true, Usage: "issuer host:port"},
			&cli.StringFlag{Name: "issuer-ca", Usage: "path to the issuer's CA certificate"},
			&cli.StringFlag{Name: "out", Required: true, Usage: "path to write the credential to"},
		},
		Action: func(c *cli.Context) error {
			creds, err := tlsutil.ClientCredentials("", "", c.String("issuer-ca"))
			if err != nil {
				return err
			}

			conn, err := grpc.Dial(c.String("issuer"), grpc.WithTransportCredentials(creds))
			if err != nil {
				return err
			}
			defer conn.Close()

			issuance := client.NewIssuanceClient(conn)

			credential, err := issuance.ObtainRootCredential(context.Background())
			if err != nil {
				return err
			}

			return os.WriteFile(c.String("out"), credential.Serialize(), 0o600)
		},
	}
}

func connectCommand() *cli.Command {
	return &cli.Command{
		Name:  "connect",
		Usage: "present an epoch token to a router agent and obtain a VPN address",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "router", Required: true, Usage: "router agent host:port"},
			&cli.StringFlag{Name: "router-ca", Usage: "path to the router agent's CA certificate"},
			&cli.StringFlag{Name: "credential", Required: true, Usage: "path to a previously obtained root credential"},
			&cli.StringFlag{Name: "issuer", Required: true, Usage: "issuer host:port, to fetch current token info"},
			&cli.StringFlag{Name: "issuer-ca", Usage: "path to the issuer's CA certificate"},
			&cli.StringFlag{Name: "domain", Required: true, Usage: "opaque domain identifying this router deployment"},
			&cli.Uint64Flag{Name: "epoch-length", Required: true, Usage: "epoch length, in seconds"},
			&cli.StringFlag{Name: "wg-key", Required: true, Usage: "hex-encoded 32-byte WireGuard public key"},
		},
		Action: func(c *cli.Context) error {
			credentialBytes, err := os.ReadFile(c.String("credential"))
			if err != nil {
				return err
			}
			credential, err := token.DeserializeRootCredential(credentialBytes)
			if err != nil {
				return err
			}

			wgKeyBytes, err := hex.DecodeString(c.String("wg-key"))
			if err != nil {
				return err
			}
			if len(wgKeyBytes) != connection.KeySize {
				return fmt.Errorf("wg-key must be %d bytes, got %d", connection.KeySize, len(wgKeyBytes))
			}
			var wgKey [connection.KeySize]byte
			copy(wgKey[:], wgKeyBytes)

			issuerCreds, err := tlsutil.ClientCredentials("", "", c.String("issuer-ca"))
			if err != nil {
				return err
			}
			issuerConn, err := grpc.Dial(c.String("issuer"), grpc.WithTransportCredentials(issuerCreds))
			if err != nil {
				return err
			}
			defer issuerConn.Close()

			info, err := client.NewIssuanceClient(issuerConn).TokenInfo(context.Background())
			if err != nil {
				return err
			}

			routerCreds, err := tlsutil.ClientCredentials("", "", c.String("router-ca"))
			if err != nil {
				return err
			}
			routerConn, err := grpc.Dial(c.String("router"), grpc.WithTransportCredentials(routerCreds))
			if err != nil {
				return err
			}
			defer routerConn.Close()

			domain := []byte(c.String("domain"))
			epoch := token.CurrentEpoch(uint64(time.Now().Unix()), c.Uint64("epoch-length"))

			response, err := client.NewRouterClient(routerConn).Connect(context.Background(), credential, domain, epoch, info, wgKey)
			if err != nil {
				return err
			}

			fmt.Printf("ipv4=%s ipv6=%s\n", formatIPv4(response.IPv4), formatIPv6(response.IPv6))
			return nil
		},
	}
}

func formatIPv4(b [connection.IPv4Size]byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

func formatIPv6(b [connection.IPv6Size]byte) string {
	out := ""
	for i := 0; i < len(b); i += 2 {
		if i > 0 {
			out += ":"
		}
		out += fmt.Sprintf("%02x%02x", b[i], b[i+1])
	}
	return out
}
