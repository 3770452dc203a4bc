package manifest

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"sigs.k8s.io/yaml"
)

var ErrInvalidRecipe = errors.New("invalid recipe")

const (

	// Working directory for the build stage when the recipe does not set one.
	DefaultWorkdir = "/src"

	// Directory the artifact is installed into, in both stages, when the
	// recipe does not set one.
	DefaultBinDir = "/usr/local/bin"

	// Shell used to run the build command.
	DefaultShell = "/bin/sh"
)

// Container IDs are derived from the recipe name, so the name is restricted
// to characters containerd accepts in identifiers.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// A two-stage build recipe.
//
// The build stage compiles the source tree into a single binary; the runtime
// stage packages that binary on a minimal base image. The recipe name doubles
// as the artifact name: unless overridden, the build stage is expected to
// leave the binary at <build.bindir>/<name>, and the runtime stage installs
// it at <runtime.bindir>/<name>.
type Recipe struct {
	Name    string       `json:"name"`
	Build   BuildStage   `json:"build"`
	Runtime RuntimeStage `json:"runtime"`
}

// The toolchain half of a recipe.
type BuildStage struct {
	From     string            `json:"from"`               // Base image reference or OCI archive path.
	Workdir  string            `json:"workdir,omitempty"`  // Where the source tree is placed. Default /src.
	Source   string            `json:"source,omitempty"`   // Source subtree relative to the build context. Default ".".
	Env      map[string]string `json:"env,omitempty"`      // Extra environment for the build command.
	Shell    string            `json:"shell,omitempty"`    // Shell for the build command. Default /bin/sh.
	Command  string            `json:"command"`            // Build command, run in the workdir.
	BinDir   string            `json:"bindir,omitempty"`   // Toolchain install directory. Default /usr/local/bin.
	Artifact string            `json:"artifact,omitempty"` // Explicit artifact path. Default <bindir>/<name>.
}

// The packaging half of a recipe.
type RuntimeStage struct {
	From     string   `json:"from"`               // Minimal base image reference or OCI archive path.
	Packages []string `json:"packages,omitempty"` // Runtime-only packages to install.
	BinDir   string   `json:"bindir,omitempty"`   // Install directory for the artifact. Default /usr/local/bin.
}

// Reads and parses a recipe file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	return Parse(data)
}

// Parses a recipe from YAML.
//
// Unknown fields are rejected so that typos in stage names or modifiers
// surface as errors instead of being silently ignored.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return &r, nil
}

// Checks that the recipe names both base images, a build command, and a
// name usable in container IDs.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecipe)
	}
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("%w: name %q contains characters not allowed in container IDs", ErrInvalidRecipe, r.Name)
	}
	if r.Build.From == "" {
		return fmt.Errorf("%w: build.from is required", ErrInvalidRecipe)
	}
	if strings.TrimSpace(r.Build.Command) == "" {
		return fmt.Errorf("%w: build.command is required", ErrInvalidRecipe)
	}
	if r.Runtime.From == "" {
		return fmt.Errorf("%w: runtime.from is required", ErrInvalidRecipe)
	}
	if r.Build.Artifact != "" && !path.IsAbs(r.Build.Artifact) {
		return fmt.Errorf("%w: build.artifact %q must be absolute", ErrInvalidRecipe, r.Build.Artifact)
	}
	return nil
}

// The working directory for the build stage.
func (r *Recipe) Workdir() string {
	if r.Build.Workdir != "" {
		return r.Build.Workdir
	}
	return DefaultWorkdir
}

// The source subtree to copy into the build stage, relative to the build
// context root.
func (r *Recipe) Source() string {
	if r.Build.Source != "" {
		return r.Build.Source
	}
	return "."
}

// The shell used to run the build command.
func (r *Recipe) Shell() string {
	if r.Build.Shell != "" {
		return r.Build.Shell
	}
	return DefaultShell
}

// Path where the build stage is expected to leave the compiled binary.
//
// When the recipe does not set an explicit artifact path, it is derived
// from the toolchain bin directory and the recipe name.
func (r *Recipe) ArtifactPath() string {
	if r.Build.Artifact != "" {
		return r.Build.Artifact
	}

	bindir := r.Build.BinDir
	if bindir == "" {
		bindir = DefaultBinDir
	}
	return path.Join(bindir, r.Name)
}

// Path the artifact is installed at inside the runtime stage.
func (r *Recipe) InstallPath() string {
	bindir := r.Runtime.BinDir
	if bindir == "" {
		bindir = DefaultBinDir
	}
	return path.Join(bindir, r.Name)
}

// The entrypoint declared on the final image: the installed artifact,
// invoked with no arguments.
func (r *Recipe) Entrypoint() []string {
	return []string{r.InstallPath()}
}
