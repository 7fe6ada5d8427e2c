package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func resolverAt(home, cwd string) *ScopeResolver {
	return &ScopeResolver{
		homeDir: home,
		workDir: func() (string, error) { return cwd, nil },
	}
}

func TestScopeConfigPath(t *testing.T) {
	scope := Scope{StatePath: "/home/user/.medrag"}
	expected := "/home/user/.medrag/config.yaml"
	if scope.ConfigPath() != expected {
		t.Errorf("expected %q, got %q", expected, scope.ConfigPath())
	}
}

func TestScopeAbs(t *testing.T) {
	scope := Scope{Path: "/project", StatePath: "/project/.medrag"}

	tests := []struct {
		in, want string
	}{
		{"data", "/project/data"},
		{"vectorstore/db_faiss", "/project/vectorstore/db_faiss"},
		{"/srv/data", "/srv/data"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := scope.Abs(tt.in); got != tt.want {
			t.Errorf("Abs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScopeResolverGlobal(t *testing.T) {
	home := t.TempDir()
	scope := resolverAt(home, home).Global()

	if scope.Type != ScopeGlobal {
		t.Errorf("expected ScopeGlobal, got %q", scope.Type)
	}
	if want := filepath.Join(home, ".medrag"); scope.StatePath != want {
		t.Errorf("expected StatePath %q, got %q", want, scope.StatePath)
	}
}

func TestScopeResolverProjectNotFound(t *testing.T) {
	tmp := t.TempDir()
	if _, found := resolverAt(tmp, tmp).Project(); found {
		t.Error("expected Project() to return false when no .medrag exists")
	}
}

func TestScopeResolverProjectInParent(t *testing.T) {
	tmp := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmp, ".medrag"), 0755); err != nil {
		t.Fatal(err)
	}
	subDir := filepath.Join(tmp, "sub", "dir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	scope, found := resolverAt(t.TempDir(), subDir).Project()
	if !found {
		t.Fatal("expected Project() to find .medrag in parent")
	}
	if scope.Type != ScopeProject {
		t.Errorf("expected ScopeProject, got %q", scope.Type)
	}
	if scope.Path != tmp {
		t.Errorf("expected Path %q, got %q", tmp, scope.Path)
	}
}

func TestScopeResolverResolve(t *testing.T) {
	project := t.TempDir()
	if err := os.Mkdir(filepath.Join(project, ".medrag"), 0755); err != nil {
		t.Fatal(err)
	}
	r := resolverAt(t.TempDir(), project)

	if got := r.Resolve("global").Type; got != ScopeGlobal {
		t.Errorf("explicit global: got %q", got)
	}
	if got := r.Resolve("").Type; got != ScopeProject {
		t.Errorf("nearest project: got %q", got)
	}

	bare := t.TempDir()
	if got := resolverAt(t.TempDir(), bare).Resolve("project").Type; got != ScopeGlobal {
		t.Errorf("expected fallback to ScopeGlobal, got %q", got)
	}
}

func TestScopeResolverHere(t *testing.T) {
	cwd := t.TempDir()
	scope, err := resolverAt(t.TempDir(), cwd).Here()
	if err != nil {
		t.Fatal(err)
	}
	if scope.StatePath != filepath.Join(cwd, ".medrag") {
		t.Errorf("unexpected StatePath %q", scope.StatePath)
	}
}
