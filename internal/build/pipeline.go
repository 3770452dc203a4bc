package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/slimforge/slimd/internal/manifest"
	"github.com/slimforge/slimd/internal/oci"
	"github.com/slimforge/slimd/internal/registry"
)

// Filename of the OCI archive produced by a successful run.
const exportFilename = "image.tar"

// Holds shared state for one recipe execution.
type pipeline struct {
	runner     Runner           // Starts stage containers.
	recipe     *manifest.Recipe // Recipe being executed.
	root       string           // Build context root.
	output     string           // Output directory for the exported image.
	platform   string           // Target platform.
	containers []Container      // Stage containers, destroyed after the run completes.

	// Seams for tests. Default to registry.Resolve and oci.Inspect.
	resolve func(ctx context.Context, ref, platform string) (string, error)
	inspect func(path string) (*oci.Summary, error)
}

// Creates a new [pipeline] from the given options.
func newPipeline(runner Runner, opts Options) *pipeline {
	return &pipeline{
		runner:   runner,
		recipe:   opts.Recipe,
		root:     opts.Root,
		output:   opts.Output,
		platform: opts.Platform,
		resolve:  registry.Resolve,
		inspect:  oci.Inspect,
	}
}

// Runs the recipe end-to-end.
//
// The build stage must succeed and leave the artifact at the declared
// path before the runtime stage starts. All stage containers are
// destroyed when the run completes, whether it succeeded or not.
func (p *pipeline) run(ctx context.Context) (*Result, error) {
	defer p.destroyContainers(ctx)

	buildCtr, err := p.startStage(ctx, "build", p.recipe.Build.From)
	if err != nil {
		return nil, err
	}

	if err := p.runBuildStage(ctx, buildCtr); err != nil {
		return nil, fmt.Errorf("%w: build stage: %w", ErrBuild, err)
	}

	if err := p.verifyArtifact(ctx, buildCtr); err != nil {
		return nil, fmt.Errorf("%w: build stage: %w", ErrBuild, err)
	}

	runtimeCtr, err := p.startStage(ctx, "runtime", p.recipe.Runtime.From)
	if err != nil {
		return nil, err
	}

	if err := p.runRuntimeStage(ctx, buildCtr, runtimeCtr); err != nil {
		return nil, fmt.Errorf("%w: runtime stage: %w", ErrBuild, err)
	}

	image, err := p.exportImage(ctx, runtimeCtr)
	if err != nil {
		return nil, fmt.Errorf("%w: runtime stage: %w", ErrBuild, err)
	}

	return &Result{Image: image}, nil
}

// Resolves a stage's base reference and starts its container.
func (p *pipeline) startStage(ctx context.Context, stage, from string) (Container, error) {
	slog.Info(fmt.Sprintf("starting %s stage", stage), "from", from, "platform", p.platform)

	archive, err := p.resolve(ctx, from, p.platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %s stage: %w", ErrBuild, stage, err)
	}

	ctr, err := p.runner.StartContainer(ctx, archive, p.containerID(stage), p.platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %s stage: %w", ErrBuild, stage, err)
	}

	p.containers = append(p.containers, ctr)
	return ctr, nil
}

// Executes the build stage: places the source tree in the working
// directory and runs the build command.
func (p *pipeline) runBuildStage(ctx context.Context, ctr Container) error {
	workdir := p.recipe.Workdir()

	if err := ctr.MkdirAll(ctx, workdir); err != nil {
		return err
	}

	if err := p.copySource(ctx, ctr, workdir); err != nil {
		return err
	}

	command := p.recipe.Build.Command
	slog.Info("running build command", "command", command)

	result, err := ctr.Exec(ctx, p.recipe.Shell(), command, environ(p.recipe.Build.Env), workdir)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: exit code %d: %s", ErrCompile, result.ExitCode, tail(result.Stderr))
	}

	return nil
}

// Checks that the build stage left the artifact at the declared path.
//
// A missing artifact means the recipe's package name does not match what
// the build actually produced. It is reported as its own error before the
// runtime stage starts, never silently skipped.
func (p *pipeline) verifyArtifact(ctx context.Context, ctr Container) error {
	artifact := p.recipe.ArtifactPath()

	exists, err := ctr.FileExists(ctx, artifact)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: expected %s", ErrMissingArtifact, artifact)
	}

	slog.Debug("artifact verified", "path", artifact)
	return nil
}

// Executes the runtime stage: installs declared packages, then receives
// the artifact from the build container.
func (p *pipeline) runRuntimeStage(ctx context.Context, buildCtr, runtimeCtr Container) error {
	if err := p.installPackages(ctx, runtimeCtr); err != nil {
		return err
	}

	return p.transferArtifact(ctx, buildCtr, runtimeCtr)
}

// Copies the artifact from the build container into the runtime container
// at the install path, piping the tar stream directly between the two.
func (p *pipeline) transferArtifact(ctx context.Context, buildCtr, runtimeCtr Container) error {
	artifact := p.recipe.ArtifactPath()
	install := p.recipe.InstallPath()
	installDir := path.Dir(install)

	slog.Info("transferring artifact", "from", artifact, "to", install)

	if err := runtimeCtr.MkdirAll(ctx, installDir); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	if err := pipeCopy(ctx, buildCtr, runtimeCtr, artifact, installDir); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	// The tar entry is named after the artifact's basename, which may
	// differ from the recipe name when an explicit artifact path is set.
	if base := path.Base(artifact); base != path.Base(install) {
		result, err := runtimeCtr.Exec(ctx, manifest.DefaultShell,
			fmt.Sprintf("mv %s %s", path.Join(installDir, base), install), nil, "")
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCopy, err)
		}
		if result.ExitCode != 0 {
			return fmt.Errorf("%w: rename failed: %s", ErrCopy, tail(result.Stderr))
		}
	}

	if err := runtimeCtr.Chmod(ctx, install, "0755"); err != nil {
		return fmt.Errorf("%w: %w", ErrCopy, err)
	}

	return nil
}

// Stops the runtime container and exports its committed filesystem as the
// final image.
//
// The archive is written next to its final name and renamed only after
// the export and verification succeed, so a failed run never leaves a
// valid-looking image behind.
func (p *pipeline) exportImage(ctx context.Context, ctr Container) (string, error) {
	if err := ctr.Stop(ctx); err != nil {
		return "", err
	}

	final := filepath.Join(p.output, exportFilename)
	partial := final + ".partial"

	if err := ctr.Export(ctx, partial, p.recipe.Entrypoint()); err != nil {
		os.Remove(partial)
		return "", err
	}

	if err := p.verifyImage(partial); err != nil {
		os.Remove(partial)
		return "", err
	}

	if err := os.Rename(partial, final); err != nil {
		os.Remove(partial)
		return "", fmt.Errorf("%w: %w", ErrFileSystemOperation, err)
	}

	return final, nil
}

// Re-reads the exported archive and confirms it declares the expected
// entrypoint.
func (p *pipeline) verifyImage(path string) error {
	summary, err := p.inspect(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}

	want := p.recipe.Entrypoint()
	if len(summary.Entrypoint) != len(want) {
		return fmt.Errorf("%w: image entrypoint %v, want %v", ErrVerify, summary.Entrypoint, want)
	}
	for i := range want {
		if summary.Entrypoint[i] != want[i] {
			return fmt.Errorf("%w: image entrypoint %v, want %v", ErrVerify, summary.Entrypoint, want)
		}
	}

	return nil
}

// Destroys all stage containers.
func (p *pipeline) destroyContainers(ctx context.Context) {
	for _, ctr := range p.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a unique container ID for a stage, scoped to this recipe and
// platform.
func (p *pipeline) containerID(stage string) string {
	return fmt.Sprintf("%s-%s-%s", p.recipe.Name, platformSlug(p.platform), stage)
}

// Converts a platform string to a filesystem-safe slug.
//
// Replaces slashes with dashes (e.g., "linux/amd64" becomes "linux-amd64").
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}

// Formats an env map as "key=value" strings for container exec.
func environ(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// Limit on stderr included in error messages.
const stderrTailLimit = 2048

// Returns the last portion of captured stderr, trimmed for error messages.
func tail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if len(stderr) > stderrTailLimit {
		stderr = "..." + stderr[len(stderr)-stderrTailLimit:]
	}
	return stderr
}
