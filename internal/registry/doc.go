// Package registry resolves base image references to local OCI archives.
//
// The container runtime only consumes OCI archives, so references that
// name a registry image are pulled once into an XDG cache directory and
// reused by subsequent builds. References that name an existing file on
// disk are passed through untouched.
package registry
