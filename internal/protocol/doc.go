// Package protocol defines the messages exchanged between the CLI and the
// daemon.
//
// Messages are newline-delimited JSON envelopes carrying a command name and
// an optional payload. Each connection holds a single request-response
// exchange: the client sends one envelope, the daemon replies with an "ok"
// or "error" envelope and closes the connection.
package protocol
