// Package server exposes the oracle's HTTP surface.
//
// # Endpoints
//
// POST /submit accepts a chat protocol message:
//
//	{
//	  "sender": "agent1qxy...",
//	  "message": {
//	    "msg_id": "2f9c...",
//	    "timestamp": "2025-01-01T00:00:00Z",
//	    "content": [{"type": "text", "text": "show active proposals"}]
//	  }
//	}
//
// and responds with the acknowledgement plus the oracle's reply. Duplicate
// deliveries get the acknowledgement only.
//
// GET /health reports the agent name and resolved canister endpoint.
//
// The metrics scrape endpoint is mounted when enabled in configuration.
package server
