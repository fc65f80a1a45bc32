// Package intent classifies free-text chat messages into governance actions
// and extracts their parameters. Classification is regex-based: simple,
// deterministic, and good enough for the command-like phrasing the agent
// receives ("create proposal: ...", "vote For on proposal 1", "status of
// proposal 2", "show active proposals").
package intent
