// ABOUTME: Endpoint resolution: one config string in, canister id + gateway origin + mode out.
// ABOUTME: Best effort by design; unrecognized forms fall back to a bare id on the production gateway.

package canister

import (
	"net"
	"net/url"
	"strings"
)

// Mode selects between the real transport and the mock responder.
type Mode string

const (
	// ModeLocal routes calls through the mock responder.
	ModeLocal Mode = "local"
	// ModeRemote routes calls through the HTTP gateway.
	ModeRemote Mode = "remote"
)

// productionGateway is the boundary origin used when the endpoint string does
// not name one.
const productionGateway = "https://icp0.io"

// gatewaySuffixes are the boundary domains whose first subdomain label is a
// canister id.
var gatewaySuffixes = []string{".icp0.io", ".ic0.app", ".raw.icp0.io", ".raw.ic0.app"}

// Endpoint is the resolved call target. Immutable after construction; it
// drives dispatch routing for the lifetime of the client.
type Endpoint struct {
	CanisterID string
	Origin     string
	Mode       Mode
}

// ResolveEndpoint parses a raw endpoint string. Recognized forms, in order:
//
//  1. a URL with a canisterId= query parameter — the origin is the URL
//     stripped of its query string;
//  2. a host under a known gateway domain — the id is the first subdomain
//     label and the origin is the production gateway;
//  3. anything else — treated as a bare canister id on the production
//     gateway.
//
// There is no error path: ambiguity degrades to form 3 rather than failing.
func ResolveEndpoint(raw string) Endpoint {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		if id := u.Query().Get("canisterId"); id != "" {
			origin := u.Scheme + "://" + u.Host
			return Endpoint{CanisterID: id, Origin: origin, Mode: modeFor(u.Hostname())}
		}
		if id, ok := subdomainCanisterID(u.Hostname()); ok {
			return Endpoint{CanisterID: id, Origin: productionGateway, Mode: ModeRemote}
		}
	}

	// Hostname without a scheme, e.g. "rdmx6-....ic0.app".
	if id, ok := subdomainCanisterID(raw); ok {
		return Endpoint{CanisterID: id, Origin: productionGateway, Mode: ModeRemote}
	}

	return Endpoint{CanisterID: raw, Origin: productionGateway, Mode: ModeRemote}
}

// subdomainCanisterID extracts the canister id from a gateway subdomain host.
func subdomainCanisterID(host string) (string, bool) {
	for _, suffix := range gatewaySuffixes {
		if strings.HasSuffix(host, suffix) {
			label := strings.TrimSuffix(host, suffix)
			if label != "" && !strings.Contains(label, ".") {
				return label, true
			}
		}
	}
	return "", false
}

// modeFor returns ModeLocal iff the host is localhost or a loopback address.
func modeFor(host string) Mode {
	if strings.EqualFold(host, "localhost") {
		return ModeLocal
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return ModeLocal
	}
	return ModeRemote
}
