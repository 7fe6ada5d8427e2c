package internal

import (
	"os"
	"path/filepath"
)

// StateDirName is the per-scope directory holding config.yaml.
const StateDirName = ".medrag"

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

type Scope struct {
	Type      ScopeType
	Path      string // scope root, relative config paths resolve here
	StatePath string // .medrag directory path
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.StatePath, "config.yaml")
}

// Abs resolves a config path against the scope root.
func (s Scope) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.Path, path)
}

type ScopeResolver struct {
	homeDir string
	workDir func() (string, error)
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home, workDir: os.Getwd}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{
		Type:      ScopeGlobal,
		Path:      r.homeDir,
		StatePath: filepath.Join(r.homeDir, StateDirName),
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd, err := r.workDir()
	if err != nil {
		return Scope{}, false
	}
	return r.findProjectScope(cwd)
}

// Here is the project scope rooted at the working directory, whether or
// not it exists yet.
func (r *ScopeResolver) Here() (Scope, error) {
	cwd, err := r.workDir()
	if err != nil {
		return Scope{}, err
	}
	return Scope{Type: ScopeProject, Path: cwd, StatePath: filepath.Join(cwd, StateDirName)}, nil
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		statePath := filepath.Join(dir, StateDirName)
		info, err := os.Stat(statePath)
		if err == nil && info.IsDir() {
			return Scope{Type: ScopeProject, Path: dir, StatePath: statePath}, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the explicit scope, else the nearest project, else global.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}
