package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touchDB(t *testing.T, project Project) {
	t.Helper()
	if err := os.WriteFile(project.DBPath, nil, 0o644); err != nil {
		t.Fatalf("write db: %v", err)
	}
}

func TestInitAndDiscoverProject(t *testing.T) {
	root := t.TempDir()
	project, err := InitProject(root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	touchDB(t, project)

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, err := DiscoverProject(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if found.DBPath != project.DBPath {
		t.Fatalf("expected %s, got %s", project.DBPath, found.DBPath)
	}
	if found.ConfigPath() != filepath.Join(root, ".quill", "config.yaml") {
		t.Fatalf("unexpected config path: %s", found.ConfigPath())
	}
}

func TestInitProjectRequiresForce(t *testing.T) {
	root := t.TempDir()
	project, err := InitProject(root, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	touchDB(t, project)

	if _, err := InitProject(root, false); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("expected already initialized error, got %v", err)
	}

	if _, err := InitProject(root, true); err != nil {
		t.Fatalf("force init: %v", err)
	}
	if _, err := os.Stat(project.DBPath); !os.IsNotExist(err) {
		t.Fatalf("expected force to remove database, got %v", err)
	}
}

func TestDiscoverProjectWithoutDatabase(t *testing.T) {
	root := t.TempDir()
	if _, err := InitProject(root, false); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, err := DiscoverProject(root)
	if err == nil || !strings.Contains(err.Error(), "quill init") {
		t.Fatalf("expected init hint, got %v", err)
	}
}

func TestEnsureGitignoreAppendsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	if err := os.WriteFile(path, []byte("*.db\ncustom"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	EnsureGitignore(dir)
	EnsureGitignore(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	if strings.Count(content, "*.db-wal") != 1 {
		t.Fatalf("expected one *.db-wal entry, got %q", content)
	}
	if !strings.HasPrefix(content, "*.db\ncustom\n") {
		t.Fatalf("expected existing entries preserved, got %q", content)
	}
}
