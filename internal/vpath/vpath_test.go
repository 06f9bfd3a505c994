package vpath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "home", "user", "pic.png")

	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantName string
	}{
		{"temp prefix", "_temp/abc.png", KindTemp, "abc.png"},
		{"temp prefix wins over everything", "_temp//etc/passwd", KindTemp, "/etc/passwd"},
		{"absolute", abs, KindAbsolute, abs},
		{"assets relative", "assets/abc.png", KindProjectRelative, "assets/abc.png"},
		{"bare name", "abc.png", KindProjectRelative, "abc.png"},
		{"temp lookalike without slash", "_tempabc.png", KindProjectRelative, "_tempabc.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if got.Kind != tt.wantKind {
				t.Errorf("Parse(%q).Kind = %v, want %v", tt.input, got.Kind, tt.wantKind)
			}
			if got.Name != tt.wantName {
				t.Errorf("Parse(%q).Name = %q, want %q", tt.input, got.Name, tt.wantName)
			}
		})
	}
}

func TestVirtualPathString(t *testing.T) {
	tests := []struct {
		name string
		path VirtualPath
		want string
	}{
		{"temp", Temp("abc.png"), "_temp/abc.png"},
		{"asset", Asset("abc.png"), "assets/abc.png"},
		{"round trip relative", Parse("assets/x.jpg"), "assets/x.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tempDir := t.TempDir()
	projectRoot := t.TempDir()
	existing := filepath.Join(t.TempDir(), "external.png")
	if err := os.WriteFile(existing, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(t.TempDir(), "missing.png")

	r := NewResolver(tempDir)

	tests := []struct {
		name        string
		input       string
		projectRoot string
		want        string
		wantErr     bool
	}{
		{
			name:        "temp ignores project root",
			input:       "_temp/abc.png",
			projectRoot: projectRoot,
			want:        filepath.Join(tempDir, "abc.png"),
		},
		{
			name:  "temp resolves without checking existence",
			input: "_temp/not-there.png",
			want:  filepath.Join(tempDir, "not-there.png"),
		},
		{
			name:    "temp traversal rejected",
			input:   "_temp/../secret.png",
			wantErr: true,
		},
		{
			name:    "temp nested name rejected",
			input:   "_temp/a/b.png",
			wantErr: true,
		},
		{
			name:        "relative joined onto project root",
			input:       "assets/abc.png",
			projectRoot: projectRoot,
			want:        filepath.Join(projectRoot, "assets", "abc.png"),
		},
		{
			name:    "relative without project root is unresolved",
			input:   "assets/abc.png",
			wantErr: true,
		},
		{
			name:        "existing absolute ignores project root",
			input:       existing,
			projectRoot: projectRoot,
			want:        existing,
		},
		{
			name:    "missing absolute is unresolved",
			input:   missing,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input, tt.projectRoot)
			if tt.wantErr {
				if !errors.Is(err, ErrUnresolved) {
					t.Fatalf("Resolve(%q) error = %v, want ErrUnresolved", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(t.TempDir())
	root := t.TempDir()

	first, err := r.Resolve("assets/a.png", root)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		got, err := r.Resolve("assets/a.png", root)
		if err != nil || got != first {
			t.Fatalf("Resolve iteration %d = %q, %v; want %q", i, got, err, first)
		}
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindTemp:            "temp",
		KindAbsolute:        "absolute",
		KindProjectRelative: "project",
		Kind(42):            "unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
