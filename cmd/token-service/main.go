// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Command token-service runs the issuer's Token-info and Token-issuer RPC
// surfaces (spec §6).
package main

import (
	"fmt"
	"net"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/veronymous/veronymous/common"
	"github.com/veronymous/veronymous/config"
	"github.com/veronymous/veronymous/issuer"
	"github.com/veronymous/veronymous/issuer/rpc"
	"github.com/veronymous/veronymous/rpcutil"
	"github.com/veronymous/veronymous/tlsutil"
)

func main() {
	app := &cli.App{
		Name:  "token-service",
		Usage: "issues root credentials and serves current/next token info",
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

	cfg, err := config.LoadTokenServiceConfig()
	if err != nil {
		return err
	}

	svc, err := issuer.NewService(cfg.KeyStorePath, cfg.KeyLifetimeSeconds)
	if err != nil {
		return err
	}
	defer svc.Close()
	go svc.Run()

	creds := insecure.NewCredentials()
	if cfg.TLS.Cert != "" {
		creds, err = tlsutil.ServerCredentials(cfg.TLS.Cert, cfg.TLS.Key, cfg.ClientCA)
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

	common.Logger.Infof("token-service listening on %s", address)
	return server.Serve(listener)
}
