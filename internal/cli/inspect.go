package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/slimforge/slimd/internal/oci"
)

// Represents the 'slimd inspect' command.
type InspectCmd struct {
	Image string `arg:"" help:"Path to an exported OCI archive." type:"existingfile"`
}

// Executes the inspect command.
//
// Reads the archive directly; the daemon is not involved.
func (c *InspectCmd) Run(ctx context.Context) error {
	summary, err := oci.Inspect(c.Image)
	if err != nil {
		return err
	}

	fmt.Printf("platform:   %s/%s\n", summary.OS, summary.Architecture)
	fmt.Printf("entrypoint: %s\n", strings.Join(summary.Entrypoint, " "))
	if len(summary.Cmd) > 0 {
		fmt.Printf("cmd:        %s\n", strings.Join(summary.Cmd, " "))
	}
	fmt.Printf("layers:     %d\n", summary.Layers)
	for _, env := range summary.Env {
		fmt.Printf("env:        %s\n", env)
	}

	return nil
}
