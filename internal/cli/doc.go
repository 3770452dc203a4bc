// Parses flags and runs the slimd commands.
//
// The binary serves both sides of the daemon socket: 'start' runs the
// daemon, while 'build', 'status' and 'shutdown' are clients that send a
// single command over the socket and print the result. 'inspect' reads an
// exported OCI archive directly, without the daemon.
//
// Global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected command runs.
package cli
