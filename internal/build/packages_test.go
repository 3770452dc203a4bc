package build

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/slimforge/slimd/internal/runtime"
)

func TestInstallCommand(t *testing.T) {
	tests := []struct {
		name    string
		mgr     string
		pkgs    []string
		want    string
		wantEnv string
	}{
		{
			name:    "apt-get",
			mgr:     "apt-get",
			pkgs:    []string{"ca-certificates", "curl"},
			want:    "apt-get update && apt-get install -y --no-install-recommends ca-certificates curl && rm -rf /var/lib/apt/lists/*",
			wantEnv: "DEBIAN_FRONTEND=noninteractive",
		},
		{
			name: "apk",
			mgr:  "apk",
			pkgs: []string{"ca-certificates"},
			want: "apk add --no-cache ca-certificates",
		},
		{
			name: "dnf",
			mgr:  "dnf",
			pkgs: []string{"openssl"},
			want: "dnf install -y openssl && dnf clean all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, env := installCommand(tt.mgr, tt.pkgs)
			if command != tt.want {
				t.Errorf("command = %q, want %q", command, tt.want)
			}
			if tt.wantEnv == "" {
				if len(env) != 0 {
					t.Errorf("env = %v, want none", env)
				}
			} else if len(env) != 1 || env[0] != tt.wantEnv {
				t.Errorf("env = %v, want [%s]", env, tt.wantEnv)
			}
		})
	}
}

func TestInstallPackagesRejectsInvalidNames(t *testing.T) {
	invalid := []string{
		"foo; rm -rf /",
		"$(whoami)",
		"foo bar",
		"-rf",
		"",
	}

	for _, pkg := range invalid {
		t.Run(pkg, func(t *testing.T) {
			recipe := testRecipe(t, []string{pkg})
			ctr := &fakeContainer{}
			p := &pipeline{recipe: recipe}

			err := p.installPackages(context.Background(), ctr)
			if !errors.Is(err, ErrPackageInstall) {
				t.Fatalf("error = %v, want ErrPackageInstall", err)
			}
			if len(ctr.execs) != 0 {
				t.Errorf("commands run for invalid package: %v", ctr.execs)
			}
		})
	}
}

func TestInstallPackagesNoneDeclared(t *testing.T) {
	recipe := testRecipe(t, nil)
	ctr := &fakeContainer{}
	p := &pipeline{recipe: recipe}

	if err := p.installPackages(context.Background(), ctr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ctr.execs) != 0 {
		t.Errorf("commands run with no packages declared: %v", ctr.execs)
	}
}

func TestDetectPackageManagerFallsThrough(t *testing.T) {
	ctr := &fakeContainer{
		script: []execRule{
			{match: "command -v apt-get", result: &runtime.ExecResult{ExitCode: 127}},
			{match: "command -v apk", result: &runtime.ExecResult{ExitCode: 0}},
		},
	}

	mgr, err := detectPackageManager(context.Background(), ctr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mgr != "apk" {
		t.Errorf("manager = %q, want apk", mgr)
	}
}

func TestDetectPackageManagerNoneFound(t *testing.T) {
	ctr := &fakeContainer{
		script: []execRule{
			{match: "command -v", result: &runtime.ExecResult{ExitCode: 127}},
		},
	}

	_, err := detectPackageManager(context.Background(), ctr)
	if !errors.Is(err, ErrPackageInstall) {
		t.Fatalf("error = %v, want ErrPackageInstall", err)
	}
	if !strings.Contains(err.Error(), "no supported package manager") {
		t.Errorf("unexpected message: %v", err)
	}
}
