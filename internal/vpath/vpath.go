// Package vpath parses and resolves the virtual paths the editor stores in
// project files.
//
// A virtual path is exactly one of:
//   - Temp: "_temp/<name>", a pasted image in the process-wide temp directory
//   - Absolute: a filesystem path outside any project
//   - ProjectRelative: anything else, joined onto a project root
//
// Parse is the only place that classifies strings. Every other package
// switches on the resulting Kind.
package vpath

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TempPrefix marks a path that lives in the temp directory.
	TempPrefix = "_temp/"
	// AssetsDir is the permanent asset directory inside a project root.
	AssetsDir = "assets"
)

// ErrUnresolved is returned when a virtual path cannot be mapped to a file.
var ErrUnresolved = errors.New("virtual path unresolved")

// Kind identifies which variant a VirtualPath is.
type Kind int

const (
	// KindTemp is a temp-directory file; Name is the file name.
	KindTemp Kind = iota
	// KindAbsolute is a real filesystem path; Name is that path.
	KindAbsolute
	// KindProjectRelative is relative to a project root; Name is the relative path.
	KindProjectRelative
)

func (k Kind) String() string {
	switch k {
	case KindTemp:
		return "temp"
	case KindAbsolute:
		return "absolute"
	case KindProjectRelative:
		return "project"
	default:
		return "unknown"
	}
}

// VirtualPath is a classified virtual path string.
type VirtualPath struct {
	Kind Kind
	Name string
}

// Parse classifies s. Precedence is temp prefix, then absolute, then
// project-relative. No normalization is applied beyond stripping the prefix.
func Parse(s string) VirtualPath {
	if name, ok := strings.CutPrefix(s, TempPrefix); ok {
		return VirtualPath{Kind: KindTemp, Name: name}
	}
	if filepath.IsAbs(s) {
		return VirtualPath{Kind: KindAbsolute, Name: s}
	}
	return VirtualPath{Kind: KindProjectRelative, Name: s}
}

// Temp returns the temp virtual path for a stored file name.
func Temp(name string) VirtualPath {
	return VirtualPath{Kind: KindTemp, Name: name}
}

// Asset returns the project-relative virtual path of a committed asset.
func Asset(name string) VirtualPath {
	return VirtualPath{Kind: KindProjectRelative, Name: AssetsDir + "/" + name}
}

// String renders the path back to the form stored in project files.
func (v VirtualPath) String() string {
	if v.Kind == KindTemp {
		return TempPrefix + v.Name
	}
	return v.Name
}

// Resolver maps virtual paths onto real files.
type Resolver struct {
	tempDir string
}

// NewResolver creates a resolver for the given temp directory.
func NewResolver(tempDir string) *Resolver {
	return &Resolver{tempDir: tempDir}
}

// TempDir returns the directory temp paths resolve into.
func (r *Resolver) TempDir() string {
	return r.tempDir
}

// Resolve returns the real path for s. projectRoot may be empty.
//
// Temp and project-relative paths resolve without touching the disk; whether
// the file exists is the caller's concern. Absolute paths resolve only if they
// exist. A relative path with no project root is unresolved.
func (r *Resolver) Resolve(s string, projectRoot string) (string, error) {
	return r.ResolvePath(Parse(s), projectRoot)
}

// ResolvePath is Resolve for an already parsed path.
func (r *Resolver) ResolvePath(v VirtualPath, projectRoot string) (string, error) {
	switch v.Kind {
	case KindTemp:
		// The temp directory is flat; names must not escape it.
		if !filepath.IsLocal(v.Name) || strings.ContainsAny(v.Name, `/\`) {
			return "", ErrUnresolved
		}
		return filepath.Join(r.tempDir, v.Name), nil
	case KindProjectRelative:
		if projectRoot == "" {
			return "", ErrUnresolved
		}
		return filepath.Join(projectRoot, filepath.FromSlash(v.Name)), nil
	case KindAbsolute:
		if _, err := os.Stat(v.Name); err != nil {
			return "", ErrUnresolved
		}
		return v.Name, nil
	}
	return "", ErrUnresolved
}
