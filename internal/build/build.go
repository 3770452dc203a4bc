package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/slimforge/slimd/internal/manifest"
	"github.com/slimforge/slimd/internal/paths"
)

// Controls recipe execution.
type Options struct {
	Recipe   *manifest.Recipe // Recipe to execute.
	Root     string           // Build context root, for resolving the source tree.
	Output   string           // Directory for the exported image.
	Platform string           // Target platform (e.g., "linux/amd64"). Defaults to host.
}

// Returned after successful recipe execution.
type Result struct {
	Image string // Path to the exported OCI archive.
}

// Executes a two-stage recipe against the container runtime.
//
// The build stage runs to completion before the runtime stage starts; any
// failure in either stage aborts the run with no image produced.
func Run(ctx context.Context, runner Runner, opts Options) (*Result, error) {
	if opts.Platform == "" {
		opts.Platform = "linux/" + goruntime.GOARCH
	}

	slog.Info("executing recipe",
		"name", opts.Recipe.Name,
		"output", opts.Output,
		"platform", opts.Platform,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return newPipeline(runner, opts).run(ctx)
}
