package cli

import (
	"context"
	"log/slog"

	"github.com/slimforge/slimd/internal/server"
)

// Represents the 'slimd start' command.
type StartCmd struct {
	Containerd string `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	Namespace  string `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
}

// Executes the start command.
//
// Starts the daemon on a Unix domain socket and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM) or a shutdown command arrives.
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   c.Containerd,
		ContainerdNamespace: c.Namespace,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("slimd is running")

	done := make(chan struct{})
	go func() {
		srv.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-done:
		return nil
	}
}
