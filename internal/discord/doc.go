// Package discord posts report lines to a Discord text channel through the
// Discord REST API using a bot token.
//
// The client never opens a gateway connection: sending messages only needs
// REST calls, which keeps a scheduled run short-lived.
package discord
