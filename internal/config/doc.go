// Package config handles configuration loading for degov-oracle.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from DEGOV_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/degov/oracle.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	canister:
//	  endpoint: "${CANISTER_URL}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Agent identity:
//
//	agent:
//	  name: "degov-oracle"
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"   # Chat API and health endpoints
//
// Canister endpoint (a bare canister id, a gateway host, or a local replica
// URL with a canisterId query parameter):
//
//	canister:
//	  endpoint: "uxrrr-q7777-77774-qaaaq-cai"
//
// When the endpoint is unset, CANISTER_URL is consulted, then
// LOCAL_CANISTER_URL, then the local replica default.
//
// Chat limits:
//
//	chat:
//	  rate_per_sender: 1    # tokens per second
//	  burst: 5
//	  dedupe_ttl: "10m"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Metrics:
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/degov/oracle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
