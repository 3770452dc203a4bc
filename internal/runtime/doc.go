// Package runtime manages stage containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and turns OCI archives into
// running build containers: the archive is imported into the content store,
// tagged with a deterministic content hash, unpacked for the target
// platform, and used to create a container with an overlay snapshot and a
// long-running task.
//
// A [Container] supports executing commands, streaming tar archives in and
// out of its filesystem, and committing its final state: Export stores the
// snapshot diff as a new layer and writes an OCI archive whose config
// carries the requested entrypoint. Containers must be destroyed when no
// longer needed to release their snapshot and task.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "slimd")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "base.tar", "myapp-build", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "cargo install --path .", nil, "/src")
//	if err != nil {
//	    return err
//	}
//
//	if err := ctr.Export(ctx, "dist/image.tar", []string{"/usr/local/bin/myapp"}); err != nil {
//	    return err
//	}
package runtime
