package build

import (
	"context"
	"io"

	"github.com/slimforge/slimd/internal/runtime"
)

// Starts stage containers from OCI archives.
//
// The pipeline depends on this narrow interface rather than the concrete
// containerd runtime so it can be exercised with fakes.
type Runner interface {
	StartContainer(ctx context.Context, archive, id, platform string) (Container, error)
}

// The container operations the pipeline needs from a running stage.
//
// Implemented by [runtime.Container].
type Container interface {
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
	MkdirAll(ctx context.Context, path string) error
	Chmod(ctx context.Context, path, mode string) error
	FileExists(ctx context.Context, path string) (bool, error)
	CopyTo(ctx context.Context, r io.Reader, destDir string) error
	CopyFrom(ctx context.Context, w io.Writer, path string) error
	Stop(ctx context.Context) error
	Export(ctx context.Context, path string, entrypoint []string) error
	Destroy(ctx context.Context)
}

// Adapts the containerd runtime to the [Runner] interface.
type containerdRunner struct {
	rt *runtime.Runtime
}

// Wraps a containerd runtime as a [Runner].
func NewRunner(rt *runtime.Runtime) Runner {
	return &containerdRunner{rt: rt}
}

func (r *containerdRunner) StartContainer(ctx context.Context, archive, id, platform string) (Container, error) {
	ctr, err := r.rt.StartContainer(ctx, archive, id, platform)
	if err != nil {
		return nil, err
	}
	return ctr, nil
}
