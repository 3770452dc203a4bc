package build

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/slimforge/slimd/internal/manifest"
)

// Package managers probed in the runtime container, in order.
var packageManagers = []string{"apt-get", "apk", "dnf"}

// Valid package names. Rejects anything the shell could interpret.
var packagePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+._-]*$`)

// Installs the recipe's runtime packages in the runtime container.
//
// A recipe with no packages skips detection entirely. Any failure, from
// an unrecognized base image to a single missing package, aborts the run.
func (p *pipeline) installPackages(ctx context.Context, ctr Container) error {
	pkgs := p.recipe.Runtime.Packages
	if len(pkgs) == 0 {
		return nil
	}

	for _, pkg := range pkgs {
		if !packagePattern.MatchString(pkg) {
			return fmt.Errorf("%w: invalid package name %q", ErrPackageInstall, pkg)
		}
	}

	mgr, err := detectPackageManager(ctx, ctr)
	if err != nil {
		return err
	}

	slog.Info("installing runtime packages", "manager", mgr, "packages", pkgs)

	command, env := installCommand(mgr, pkgs)
	result, err := ctr.Exec(ctx, manifest.DefaultShell, command, env, "")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPackageInstall, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %s exit code %d: %s", ErrPackageInstall, mgr, result.ExitCode, tail(result.Stderr))
	}

	return nil
}

// Probes the container for a known package manager.
func detectPackageManager(ctx context.Context, ctr Container) (string, error) {
	for _, mgr := range packageManagers {
		result, err := ctr.Exec(ctx, manifest.DefaultShell, "command -v "+mgr, nil, "")
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPackageInstall, err)
		}
		if result.ExitCode == 0 {
			return mgr, nil
		}
	}
	return "", fmt.Errorf("%w: no supported package manager in base image", ErrPackageInstall)
}

// Returns the shell command and environment that installs the given
// packages with the given manager. Package caches are cleaned in the same
// command so they never land in the exported image.
func installCommand(mgr string, pkgs []string) (command string, env []string) {
	list := strings.Join(pkgs, " ")

	switch mgr {
	case "apt-get":
		return "apt-get update && apt-get install -y --no-install-recommends " + list +
				" && rm -rf /var/lib/apt/lists/*",
			[]string{"DEBIAN_FRONTEND=noninteractive"}
	case "apk":
		return "apk add --no-cache " + list, nil
	case "dnf":
		return "dnf install -y " + list + " && dnf clean all", nil
	}

	return "", nil
}
