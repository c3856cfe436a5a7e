// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package config loads the YAML configuration for the token-issuer and
// router-agent binaries (spec §6 "Configuration"). Parsing only: TLS
// material validation and process supervision are out of scope, the
// fields are carried through untouched to the gRPC/TLS dial options.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/veronymous/veronymous/verrors"
)

const (
	// RouterAgentConfigEnv names the env var holding the router-agent
	// config file path.
	RouterAgentConfigEnv = "VERONYMOUS_ROUTER_AGENT_CONFIG"
	// TokenServiceConfigEnv names the env var holding the token-service
	// config file path.
	TokenServiceConfigEnv = "VERONYMOUS_TOKEN_SERVICE_CONFIG"

	defaultRouterAgentConfigPath  = "veronymous_router_agent.yml"
	defaultTokenServiceConfigPath = "veronymous_token_service.yml"
)

// TLSMaterial is a (cert, key, CA) triple used both for a service's own
// server identity and for dialing an mTLS-protected upstream.
type TLSMaterial struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
	CA   string `yaml:"ca"`
}

// TokenServiceConfig is the issuer's configuration.
type TokenServiceConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	EpochLengthSeconds uint64 `yaml:"epoch_length_seconds"`
	KeyLifetimeSeconds uint64 `yaml:"key_lifetime_seconds"`

	KeyStorePath string `yaml:"key_store_path"`

	TLS      TLSMaterial `yaml:"tls"`
	ClientCA string      `yaml:"client_ca"`
}

// RouterAgentConfig is the router-agent's configuration.
type RouterAgentConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	EpochLengthSeconds uint64 `yaml:"epoch_length_seconds"`
	EpochBufferSeconds uint64 `yaml:"epoch_buffer_seconds"`

	WgAddresses  []string    `yaml:"wg_addresses"`
	WgTLS        TLSMaterial `yaml:"wg_tls"`
	WgGatewayIP4 [2]byte     `yaml:"wg_gateway_ipv4"`
	WgGatewayIP6 [13]byte    `yaml:"wg_gateway_ipv6"`

	ConnectionsRedisAddress      string `yaml:"connections_redis_address"`
	ConnectionsStateRedisAddress string `yaml:"connections_state_redis_address"`
	TokenIDsRedisAddress         string `yaml:"token_ids_redis_address"`

	TokenInfoEndpoint string      `yaml:"token_info_endpoint"`
	TokenInfoTLS      TLSMaterial `yaml:"token_info_tls"`
	TokenDomain       []byte      `yaml:"token_domain"`

	TLS TLSMaterial `yaml:"tls"`
}

// LoadTokenServiceConfig reads the issuer's config from the path named by
// VERONYMOUS_TOKEN_SERVICE_CONFIG, defaulting to
// "veronymous_token_service.yml".
func LoadTokenServiceConfig() (TokenServiceConfig, error) {
	var config TokenServiceConfig
	if err := load(path(TokenServiceConfigEnv, defaultTokenServiceConfigPath), &config); err != nil {
		return TokenServiceConfig{}, err
	}
	return config, nil
}

// LoadRouterAgentConfig reads the router-agent's config from the path
// named by VERONYMOUS_ROUTER_AGENT_CONFIG, defaulting to
// "veronymous_router_agent.yml".
func LoadRouterAgentConfig() (RouterAgentConfig, error) {
	var config RouterAgentConfig
	if err := load(path(RouterAgentConfigEnv, defaultRouterAgentConfigPath), &config); err != nil {
		return RouterAgentConfig{}, err
	}
	return config, nil
}

func path(env, fallback string) string {
	if p := os.Getenv(env); p != "" {
		return p
	}
	return fallback
}

func load(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return verrors.Wrap(verrors.KindInitialization, err, "could not read config file")
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return verrors.Wrap(verrors.KindInitialization, err, "could not parse config file")
	}
	return nil
}
