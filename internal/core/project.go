package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	projectDirName = ".quill"
	dbFileName     = "quill.db"
	configFileName = "config.yaml"
)

// Project represents a quill project directory.
type Project struct {
	Root   string
	DBPath string
}

// Dir returns the project's .quill directory.
func (p Project) Dir() string {
	return filepath.Dir(p.DBPath)
}

// ConfigPath returns the optional per-project config file.
func (p Project) ConfigPath() string {
	return filepath.Join(p.Dir(), configFileName)
}

// DiscoverProject walks up from startDir to find a .quill directory.
func DiscoverProject(startDir string) (Project, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Project{}, err
	}

	for {
		dir := filepath.Join(current, projectDirName)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			dbPath := filepath.Join(dir, dbFileName)
			if _, err := os.Stat(dbPath); err != nil {
				return Project{}, fmt.Errorf("quill database not found. Run 'quill init' first")
			}
			return Project{Root: current, DBPath: dbPath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Project{}, fmt.Errorf("not initialized. Run 'quill init' first")
		}
		current = parent
	}
}

// InitProject initializes a new quill project at dir.
func InitProject(dir string, force bool) (Project, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}

	projectDir := filepath.Join(root, projectDirName)
	dbPath := filepath.Join(projectDir, dbFileName)

	if info, err := os.Stat(projectDir); err == nil && info.IsDir() && !force {
		return Project{}, fmt.Errorf("already initialized. Use --force to reinitialize")
	}

	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return Project{}, err
	}
	EnsureGitignore(projectDir)

	if force {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
				return Project{}, err
			}
		}
	}

	return Project{Root: root, DBPath: dbPath}, nil
}

// EnsureGitignore ensures .quill/.gitignore contains sqlite ignores.
func EnsureGitignore(dir string) {
	gitignore := filepath.Join(dir, ".gitignore")
	entries := []string{"*.db", "*.db-wal", "*.db-shm", ".env"}

	data, err := os.ReadFile(gitignore)
	if err != nil {
		_ = os.WriteFile(gitignore, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
		return
	}
	content := string(data)

	lines := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		lines[line] = true
	}

	missing := []string{}
	for _, entry := range entries {
		if !lines[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	_ = os.WriteFile(gitignore, []byte(content), 0o644)
}
