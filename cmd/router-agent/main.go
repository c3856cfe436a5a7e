// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Command router-agent admits VPN clients into an epoch, detects replay,
// allocates addresses, and programs WireGuard through the configured
// WireGuard managers (spec §4.8, §6).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/veronymous/veronymous/common"
	"github.com/veronymous/veronymous/config"
	"github.com/veronymous/veronymous/router/addralloc"
	"github.com/veronymous/veronymous/router/admission"
	"github.com/veronymous/veronymous/router/conndb"
	"github.com/veronymous/veronymous/router/keycache"
	"github.com/veronymous/veronymous/router/replay"
	"github.com/veronymous/veronymous/router/rpc"
	"github.com/veronymous/veronymous/router/wireguard"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/tlsutil"
)

// sweepInterval bounds how often expired connection epochs are cleared.
const sweepInterval = time.Minute

func main() {
	app := &cli.App{
		Name:  "router-agent",
		Usage: "admits VPN clients for an epoch and programs WireGuard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug|info|warn|error"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := common.SetLogLevel(c.String("log-level")); err != nil {
		return err
	}

	cfg, err := config.LoadRouterAgentConfig()
	if err != nil {
		return err
	}

	keys, err := dialKeyCache(cfg)
	if err != nil {
		return err
	}
	defer keys.Close()
	go keys.Run(keys.Current().KeyLifetime)

	wg, err := dialWireguardManagers(cfg)
	if err != nil {
		return err
	}

	replayDetector, err := replay.New(cfg.TokenIDsRedisAddress)
	if err != nil {
		return err
	}
	defer replayDetector.Close()

	addresses, err := addralloc.New(cfg.ConnectionsStateRedisAddress, cfg.WgGatewayIP4, cfg.WgGatewayIP6)
	if err != nil {
		return err
	}
	defer addresses.Close()

	conns, err := conndb.New(cfg.ConnectionsRedisAddress)
	if err != nil {
		return err
	}
	defer conns.Close()

	admissionConfig := admission.Config{
		Domain:      cfg.TokenDomain,
		EpochLength: cfg.EpochLengthSeconds,
		Buffer:      cfg.EpochBufferSeconds,
	}
	svc := admission.New(admissionConfig, keys, replayDetector, addresses, conns, wg)
	go runSweeper(svc)

	creds := insecure.NewCredentials()
	if cfg.TLS.Cert != "" {
		creds, err = tlsutil.ServerCredentials(cfg.TLS.Cert, cfg.TLS.Key, "")
		if err != nil {
			return err
		}
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	server := grpc.NewServer(grpc.Creds(creds), rpcutil.LoggingServerOption(zapLogger))
	rpc.Register(server, svc)

	address := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	common.Logger.Infof("router-agent listening on %s", address)
	return server.Serve(listener)
}

func dialKeyCache(cfg config.RouterAgentConfig) (*keycache.Cache, error) {
	creds, err := tlsutil.ClientCredentials(cfg.TokenInfoTLS.Cert, cfg.TokenInfoTLS.Key, cfg.TokenInfoTLS.CA)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.Dial(cfg.TokenInfoEndpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}

	return keycache.New(conn)
}

func dialWireguardManagers(cfg config.RouterAgentConfig) (*wireguard.Manager, error) {
	creds, err := tlsutil.ClientCredentials(cfg.WgTLS.Cert, cfg.WgTLS.Key, cfg.WgTLS.CA)
	if err != nil {
		return nil, err
	}

	conns := make([]*grpc.ClientConn, 0, len(cfg.WgAddresses))
	for _, address := range cfg.WgAddresses {
		conn, err := grpc.Dial(address, grpc.WithTransportCredentials(creds))
		if err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}

	return wireguard.New(conns), nil
}

func runSweeper(svc *admission.Service) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := svc.Sweep(context.Background()); err != nil {
			common.Logger.Errorf("connection sweep failed: %s", err)
		}
	}
}
