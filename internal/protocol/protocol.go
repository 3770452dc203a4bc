package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slimforge/slimd/internal/manifest"
)

var ErrProtocol = errors.New("protocol error")

// A command carried by an envelope.
type Command string

const (
	// Requests sent by the client.
	CmdBuild    Command = "build"
	CmdStatus   Command = "status"
	CmdShutdown Command = "shutdown"

	// Responses sent by the daemon.
	CmdOK    Command = "ok"
	CmdError Command = "error"
)

// The wire framing for one message: a command name plus an optional
// command-specific payload. One envelope per line.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Asks the daemon to execute a two-stage recipe.
type BuildRequest struct {
	Recipe   *manifest.Recipe `json:"recipe"`             // Recipe to execute.
	Root     string           `json:"root"`               // Build context root on the daemon host.
	Output   string           `json:"output"`             // Directory for the exported image.
	Platform string           `json:"platform,omitempty"` // Target platform. Empty means the daemon host.
}

// Returned after a successful build.
type BuildResult struct {
	Output string `json:"output"` // Path to the exported image archive.
}

// Returned for a status request.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"` // Build commands processed since startup.
}

// Returned when a command fails.
type ErrorResult struct {
	Message string `json:"message"`
}

// Serializes a command and payload into a JSON envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return data, nil
}

// Parses a JSON envelope, returning the envelope and its raw payload.
func Decode(data []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrProtocol)
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, fmt.Errorf("%w: missing payload", ErrProtocol)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return v, nil
}
