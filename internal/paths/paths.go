package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "slimd"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/slimd or /run/user/<uid>/slimd
//	macOS:   ~/Library/Caches/slimd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the Unix domain socket for CLI-to-daemon communication.
//
//	Linux:   $XDG_RUNTIME_DIR/slimd/slimd.sock
//	macOS:   ~/Library/Caches/slimd/run/slimd.sock
func Socket() string {
	return filepath.Join(Runtime(), daemonName+".sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/slimd/slimd.pid
//	macOS:   ~/Library/Caches/slimd/run/slimd.pid
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}

// Path to the directory where pulled base images are cached as OCI archives.
//
//	Linux:   ~/.cache/slimd/images
//	macOS:   ~/Library/Caches/slimd/images
func ImageCache() string {
	return filepath.Join(xdg.CacheHome, daemonName, "images")
}
