// Package metrics exposes Prometheus instrumentation for the oracle.
//
// The package provides a canister.Observer implementation that counts calls,
// failures by taxonomy type, and call latency, plus an http.Handler serving
// the scrape endpoint. Everything registers against a private registry so
// multiple instances can coexist in tests.
package metrics
