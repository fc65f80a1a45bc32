// Package dedupe tracks recently seen chat message ids so redelivered
// messages are acknowledged but processed only once.
package dedupe
