package oci

import (
	"archive/tar"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Writes a minimal single-image OCI archive to a temp file and returns
// its path.
func writeTestArchive(t *testing.T, config ocispec.Image, layers int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "image.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()

	writeEntry := func(name string, data []byte) {
		t.Helper()
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(data))}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	writeBlob := func(data []byte) digest.Digest {
		t.Helper()
		d := digest.FromBytes(data)
		writeEntry(blobPath(d), data)
		return d
	}

	configData, err := json.Marshal(config)
	if err != nil {
		t.Fatal(err)
	}
	configDigest := writeBlob(configData)

	manifest := ocispec.Manifest{
		Versioned: specs.Versioned{SchemaVersion: 2},
		MediaType: ocispec.MediaTypeImageManifest,
		Config: ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageConfig,
			Digest:    configDigest,
			Size:      int64(len(configData)),
		},
	}
	for i := 0; i < layers; i++ {
		layer := writeBlob([]byte{byte(i)})
		manifest.Layers = append(manifest.Layers, ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageLayerGzip,
			Digest:    layer,
			Size:      1,
		})
	}

	manifestData, err := json.Marshal(manifest)
	if err != nil {
		t.Fatal(err)
	}
	manifestDigest := writeBlob(manifestData)

	index := ocispec.Index{
		Versioned: specs.Versioned{SchemaVersion: 2},
		Manifests: []ocispec.Descriptor{
			{
				MediaType: ocispec.MediaTypeImageManifest,
				Digest:    manifestDigest,
				Size:      int64(len(manifestData)),
			},
		},
	}
	indexData, err := json.Marshal(index)
	if err != nil {
		t.Fatal(err)
	}
	writeEntry("index.json", indexData)

	return path
}

func TestInspect(t *testing.T) {
	path := writeTestArchive(t, ocispec.Image{
		Platform: ocispec.Platform{OS: "linux", Architecture: "amd64"},
		Config: ocispec.ImageConfig{
			Entrypoint: []string{"/usr/local/bin/myapp"},
			Env:        []string{"PATH=/usr/local/bin:/usr/bin"},
		},
	}, 3)

	summary, err := Inspect(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Entrypoint) != 1 || summary.Entrypoint[0] != "/usr/local/bin/myapp" {
		t.Fatalf("entrypoint = %v, want [/usr/local/bin/myapp]", summary.Entrypoint)
	}
	if len(summary.Cmd) != 0 {
		t.Fatalf("cmd = %v, want empty", summary.Cmd)
	}
	if summary.OS != "linux" || summary.Architecture != "amd64" {
		t.Fatalf("platform = %s/%s, want linux/amd64", summary.OS, summary.Architecture)
	}
	if summary.Layers != 3 {
		t.Fatalf("layers = %d, want 3", summary.Layers)
	}
}

func TestInspectNoManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.tar")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(f)

	indexData, _ := json.Marshal(ocispec.Index{Versioned: specs.Versioned{SchemaVersion: 2}})
	if err := tw.WriteHeader(&tar.Header{Name: "index.json", Mode: 0644, Size: int64(len(indexData))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(indexData); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	f.Close()

	if _, err := Inspect(path); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestInspectMissingFile(t *testing.T) {
	if _, err := Inspect("/nonexistent/image.tar"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
