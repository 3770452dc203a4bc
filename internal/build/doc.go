// Package build executes two-stage recipes against a container runtime.
//
// A run is strictly sequential. The build stage starts a container from
// the toolchain base image, receives the source tree, and runs the build
// command, which must leave exactly one binary at the recipe's artifact
// path. The runtime stage starts a container from the minimal base image,
// installs any declared runtime packages, and receives that one artifact
// as a tar stream piped directly between the two containers. The runtime
// container's filesystem is then committed and exported as an OCI archive
// whose entrypoint is the installed artifact.
//
// Every failure aborts the whole run: the runtime stage never starts if
// the build stage fails, the export is written to a temporary file and
// renamed only on success, and the exported archive is re-read to confirm
// it declares the expected entrypoint. All stage containers are destroyed
// when the run completes.
//
// Example usage:
//
//	result, err := build.Run(ctx, build.NewRunner(rt), build.Options{
//	    Recipe: recipe,
//	    Root:   ".",
//	    Output: "dist",
//	})
//	if err != nil {
//	    return err
//	}
package build
