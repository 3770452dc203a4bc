package cli

import (
	"context"
	"fmt"

	"github.com/slimforge/slimd/internal/protocol"
)

// Represents the 'slimd status' command.
type StatusCmd struct{}

// Executes the status command.
func (c *StatusCmd) Run(ctx context.Context) error {
	result, err := roundTrip[protocol.StatusResult](protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	fmt.Printf("running: %t\n", result.Running)
	fmt.Printf("version: %s\n", result.Version)
	fmt.Printf("pid:     %d\n", result.Pid)
	fmt.Printf("uptime:  %s\n", result.Uptime)
	fmt.Printf("builds:  %d\n", result.Builds)

	return nil
}
