package cli

import (
	"context"
	"fmt"

	"github.com/slimforge/slimd/internal/build"
	"github.com/slimforge/slimd/internal/manifest"
	"github.com/slimforge/slimd/internal/runtime"
)

// Represents the 'slimd build' command.
type BuildCmd struct {
	Recipe   string `arg:"" help:"Path to the recipe file." type:"existingfile"`
	Root     string `help:"Build context root the source tree is resolved against." default:"." type:"existingdir"`
	Output   string `short:"o" help:"Directory the image is exported into." default:"dist"`
	Platform string `short:"p" help:"Target platform (e.g. linux/amd64). Defaults to the host." placeholder:"OS/ARCH"`

	Containerd string `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	Namespace  string `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
}

// Executes the build command.
//
// Runs the recipe directly against containerd; the daemon is not
// involved. Cancelling (SIGINT) aborts the run with no image produced.
func (c *BuildCmd) Run(ctx context.Context) error {
	recipe, err := manifest.Load(c.Recipe)
	if err != nil {
		return err
	}

	rt, err := runtime.New(c.Containerd, c.Namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := build.Run(ctx, build.NewRunner(rt), build.Options{
		Recipe:   recipe,
		Root:     c.Root,
		Output:   c.Output,
		Platform: c.Platform,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Image)
	return nil
}
