// Package oci provides a read-only view of exported OCI image archives.
//
// The archive's tar is opened as a filesystem and the index, manifest,
// and config documents are followed without unpacking any layers. The
// build pipeline uses this to verify an exported image before reporting
// success, and the CLI exposes it as the inspect command.
package oci
