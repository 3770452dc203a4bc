package cli

import (
	"bufio"
	"errors"
	"fmt"
	"net"

	"github.com/slimforge/slimd/internal/paths"
	"github.com/slimforge/slimd/internal/protocol"
)

var ErrDaemon = errors.New("daemon error")

// Returns the daemon socket path, honoring the --socket override.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}

// Sends one command to the daemon and returns the response payload.
//
// Each exchange uses a fresh connection: the request is written as a
// newline-delimited JSON envelope, one response line is read back, and
// the connection is closed. An error response from the daemon is
// unwrapped into a plain error.
func roundTrip[T any](cmd protocol.Command, payload any) (*T, error) {
	conn, err := net.Dial("unix", socketPath())
	if err != nil {
		return nil, fmt.Errorf("%w: is the daemon running? %w", ErrDaemon, err)
	}
	defer conn.Close()

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}

	env, respPayload, err := protocol.Decode(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
	}

	switch env.Command {
	case protocol.CmdOK:
		if len(respPayload) == 0 {
			return new(T), nil
		}
		result, err := protocol.DecodePayload[T](respPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
		}
		return &result, nil
	case protocol.CmdError:
		result, err := protocol.DecodePayload[protocol.ErrorResult](respPayload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDaemon, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrDaemon, result.Message)
	default:
		return nil, fmt.Errorf("%w: unexpected response command %q", ErrDaemon, env.Command)
	}
}
