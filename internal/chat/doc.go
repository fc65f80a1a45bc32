// Package chat implements the agent's conversational surface: the chat
// protocol message shapes, acknowledgement semantics, and the routing of
// classified intents to the governance client.
//
// Every inbound message is acknowledged. Redelivered messages (same msg id)
// are acknowledged again but processed once, and senders are rate limited
// with a per-sender token bucket. Replies are plain text, truncated to fit
// chat display limits.
package chat
