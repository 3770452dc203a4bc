package cli

import (
	"context"
	"fmt"

	"github.com/slimforge/slimd/internal/protocol"
)

// Represents the 'slimd shutdown' command.
type ShutdownCmd struct{}

// Executes the shutdown command.
func (c *ShutdownCmd) Run(ctx context.Context) error {
	if _, err := roundTrip[struct{}](protocol.CmdShutdown, nil); err != nil {
		return err
	}

	fmt.Println("shutdown requested")
	return nil
}
