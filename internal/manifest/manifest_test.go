package manifest

import (
	"errors"
	"testing"
)

const validRecipe = `
name: myapp
build:
  from: docker.io/library/rust:1.75
  command: cargo install --path . --root /usr/local
runtime:
  from: docker.io/library/debian:bookworm-slim
  packages: [ca-certificates]
`

func TestParseDefaults(t *testing.T) {
	r, err := Parse([]byte(validRecipe))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Name != "myapp" {
		t.Fatalf("name = %q, want myapp", r.Name)
	}
	if r.Workdir() != DefaultWorkdir {
		t.Errorf("workdir = %q, want %q", r.Workdir(), DefaultWorkdir)
	}
	if r.Source() != "." {
		t.Errorf("source = %q, want .", r.Source())
	}
	if r.Shell() != DefaultShell {
		t.Errorf("shell = %q, want %q", r.Shell(), DefaultShell)
	}
	if got := r.ArtifactPath(); got != "/usr/local/bin/myapp" {
		t.Errorf("artifact path = %q, want /usr/local/bin/myapp", got)
	}
	if got := r.InstallPath(); got != "/usr/local/bin/myapp" {
		t.Errorf("install path = %q, want /usr/local/bin/myapp", got)
	}
}

func TestParseOverrides(t *testing.T) {
	r, err := Parse([]byte(`
name: svc
build:
  from: golang:1.25
  workdir: /work
  source: backend
  shell: /bin/bash
  command: go build -o /out/svc .
  artifact: /out/svc
runtime:
  from: alpine:3.20
  bindir: /opt/bin
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Workdir() != "/work" {
		t.Errorf("workdir = %q, want /work", r.Workdir())
	}
	if r.Source() != "backend" {
		t.Errorf("source = %q, want backend", r.Source())
	}
	if r.Shell() != "/bin/bash" {
		t.Errorf("shell = %q, want /bin/bash", r.Shell())
	}
	if r.ArtifactPath() != "/out/svc" {
		t.Errorf("artifact path = %q, want /out/svc", r.ArtifactPath())
	}
	if r.InstallPath() != "/opt/bin/svc" {
		t.Errorf("install path = %q, want /opt/bin/svc", r.InstallPath())
	}
}

func TestParseBinDirArtifact(t *testing.T) {
	r, err := Parse([]byte(`
name: myapp
build:
  from: rust:1.75
  command: cargo install --path .
  bindir: /usr/local/cargo/bin
runtime:
  from: debian:bookworm-slim
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.ArtifactPath(); got != "/usr/local/cargo/bin/myapp" {
		t.Errorf("artifact path = %q, want /usr/local/cargo/bin/myapp", got)
	}
}

func TestEntrypoint(t *testing.T) {
	r, err := Parse([]byte(validRecipe))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ep := r.Entrypoint()
	if len(ep) != 1 {
		t.Fatalf("entrypoint = %v, want a single element", ep)
	}
	if ep[0] != "/usr/local/bin/myapp" {
		t.Fatalf("entrypoint = %q, want /usr/local/bin/myapp", ep[0])
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name: "missing name",
			input: `
build:
  from: rust:1.75
  command: cargo install --path .
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name: "name with spaces",
			input: `
name: "my app"
build:
  from: rust:1.75
  command: make
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name: "missing build base",
			input: `
name: myapp
build:
  command: make
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name: "missing build command",
			input: `
name: myapp
build:
  from: rust:1.75
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name: "missing runtime base",
			input: `
name: myapp
build:
  from: rust:1.75
  command: make
runtime:
  packages: [ca-certificates]
`,
		},
		{
			name: "relative artifact path",
			input: `
name: myapp
build:
  from: rust:1.75
  command: make
  artifact: bin/myapp
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name: "unknown field",
			input: `
name: myapp
build:
  from: rust:1.75
  command: make
  entrypoint: [/bin/sh]
runtime:
  from: debian:bookworm-slim
`,
		},
		{
			name:  "not yaml",
			input: `{{{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidRecipe) {
				t.Fatalf("error %v is not ErrInvalidRecipe", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/recipe.yaml"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
