// Package manifest defines the two-stage build recipe.
//
// A recipe is a small YAML document naming a build stage and a runtime
// stage. The build stage has a full toolchain base image and produces
// exactly one binary at a predictable path; the runtime stage has a
// minimal base image, an optional list of runtime-only packages, and
// receives that one binary as the image entrypoint.
//
// Example recipe:
//
//	name: myapp
//	build:
//	  from: docker.io/library/rust:1.75
//	  command: cargo install --path . --root /usr/local
//	runtime:
//	  from: docker.io/library/debian:bookworm-slim
//	  packages: [ca-certificates]
//
// Unset fields fall back to conventional defaults: the source tree is
// placed at /src, binaries live in /usr/local/bin, and the build command
// runs under /bin/sh.
package manifest
