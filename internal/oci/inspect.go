package oci

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	tarfs "github.com/nlepage/go-tarfs"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

var ErrInvalidArchive = errors.New("invalid image archive")

// What Inspect reports about an image archive.
type Summary struct {
	Entrypoint   []string // Entrypoint declared on the image config.
	Cmd          []string // Default arguments, if any.
	Env          []string // Environment declared on the image config.
	OS           string
	Architecture string
	Layers       int // Number of filesystem layers.
}

// Reads an OCI archive and summarizes its image config.
//
// The archive's index is followed to the first image manifest and its
// config blob. Archives with no image manifest are rejected.
func Inspect(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	defer f.Close()

	tfs, err := tarfs.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}

	index, err := readJSON[ocispec.Index](tfs, "index.json")
	if err != nil {
		return nil, err
	}

	for _, m := range index.Manifests {
		if m.MediaType != ocispec.MediaTypeImageManifest {
			continue
		}

		manifest, err := readJSON[ocispec.Manifest](tfs, blobPath(m.Digest))
		if err != nil {
			return nil, err
		}

		config, err := readJSON[ocispec.Image](tfs, blobPath(manifest.Config.Digest))
		if err != nil {
			return nil, err
		}

		return &Summary{
			Entrypoint:   config.Config.Entrypoint,
			Cmd:          config.Config.Cmd,
			Env:          config.Config.Env,
			OS:           config.OS,
			Architecture: config.Architecture,
			Layers:       len(manifest.Layers),
		}, nil
	}

	return nil, fmt.Errorf("%w: no image manifest in index", ErrInvalidArchive)
}

// Returns the path of a blob within an OCI layout.
func blobPath(d digest.Digest) string {
	return fmt.Sprintf("blobs/%s/%s", d.Algorithm().String(), d.Hex())
}

// Opens a file inside the archive and unmarshals it as JSON.
func readJSON[T any](tfs fs.FS, path string) (out T, err error) {
	f, err := tfs.Open(path)
	if err != nil {
		return out, fmt.Errorf("%w: missing %s: %w", ErrInvalidArchive, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return out, fmt.Errorf("%w: reading %s: %w", ErrInvalidArchive, path, err)
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: parsing %s: %w", ErrInvalidArchive, path, err)
	}
	return out, nil
}
