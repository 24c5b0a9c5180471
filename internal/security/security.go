package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinodismyname/leadlens/internal/export"
)

// Manager enforces the directory allow-list for reading campaign exports
// and writing report files. Roots are stored canonical (absolute, symlinks
// resolved) so later containment checks cannot be escaped through links.
type Manager struct {
	allowedDirs []string
	openExts    map[string]struct{}
	writeExts   map[string]struct{}
}

// ErrNotAllowed indicates the requested path is outside the allow-list roots.
var ErrNotAllowed = errors.New("security: path not allowed")

// ErrUnsupportedExtension indicates the requested file extension is not supported.
var ErrUnsupportedExtension = errors.New("security: unsupported file extension")

// ErrNotFound indicates the requested file does not exist or is not accessible.
var ErrNotFound = errors.New("security: file not found")

// EnvAllowedDirs names the path-list variable read by NewManagerFromEnv.
const EnvAllowedDirs = "LEADLENS_ALLOWED_DIRS"

var (
	defaultOpenExts  = []string{".csv", ".xlsx", ".xlsm"}
	defaultWriteExts = export.Formats()
)

func extSet(list []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(list))
	for _, e := range list {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || !strings.HasPrefix(e, ".") {
			return nil, fmt.Errorf("security: invalid extension: %q", e)
		}
		out[e] = struct{}{}
	}
	return out, nil
}

// NewManager constructs a security manager for the given roots. Nil
// extension lists select the defaults: .csv/.xlsx/.xlsm for reads and
// .csv/.xlsx/.png for writes.
func NewManager(allowDirs, openExtensions, writeExtensions []string) (*Manager, error) {
	if len(openExtensions) == 0 {
		openExtensions = defaultOpenExts
	}
	if len(writeExtensions) == 0 {
		writeExtensions = defaultWriteExts
	}
	openSet, err := extSet(openExtensions)
	if err != nil {
		return nil, err
	}
	writeSet, err := extSet(writeExtensions)
	if err != nil {
		return nil, err
	}

	canonical := make([]string, 0, len(allowDirs))
	for _, d := range allowDirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		real, err := canonicalDir(d)
		if err != nil {
			return nil, err
		}
		canonical = append(canonical, real)
	}
	return &Manager{allowedDirs: canonical, openExts: openSet, writeExts: writeSet}, nil
}

func canonicalDir(d string) (string, error) {
	abs, err := filepath.Abs(d)
	if err != nil {
		return "", fmt.Errorf("security: resolve abs for %q: %w", d, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("security: eval symlinks for %q: %w", abs, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("security: stat %q: %w", real, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("security: allow-list entry is not a directory: %q", real)
	}
	return filepath.Clean(real), nil
}

// NewManagerFromEnv reads LEADLENS_ALLOWED_DIRS as an os.PathListSeparator
// list. An empty variable yields an empty allow-list (deny-by-default).
func NewManagerFromEnv() (*Manager, error) {
	var dirs []string
	if list := os.Getenv(EnvAllowedDirs); list != "" {
		dirs = filepath.SplitList(list)
	}
	return NewManager(dirs, nil, nil)
}

// AllowedDirectories returns the canonical allow-list roots.
func (m *Manager) AllowedDirectories() []string {
	out := make([]string, len(m.allowedDirs))
	copy(out, m.allowedDirs)
	return out
}

// ValidateConfig returns an error when no allow-list entries are configured.
func (m *Manager) ValidateConfig() error {
	if len(m.allowedDirs) == 0 {
		return errors.New("security: no allowed directories configured")
	}
	return nil
}

// ValidateOpenPath ensures input names an existing campaign file inside an
// allowed root and returns its canonical absolute path.
func (m *Manager) ValidateOpenPath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	if _, ok := m.openExts[strings.ToLower(filepath.Ext(input))]; !ok {
		return "", ErrUnsupportedExtension
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("security: abs path: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: eval symlinks: %w", err)
	}
	info, err := os.Stat(real)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: stat: %w", err)
	}
	if info.IsDir() {
		return "", ErrNotAllowed
	}
	if !m.contained(real) {
		return "", ErrNotAllowed
	}
	return real, nil
}

// ValidateWritePath checks an export destination. The file may not exist
// yet, so containment is checked on its resolved parent directory.
func (m *Manager) ValidateWritePath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	if _, ok := m.writeExts[strings.ToLower(filepath.Ext(input))]; !ok {
		return "", ErrUnsupportedExtension
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("security: abs path: %w", err)
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: eval symlinks: %w", err)
	}
	target := filepath.Join(parent, filepath.Base(abs))
	// An existing symlink at the target would redirect the write.
	if info, err := os.Lstat(target); err == nil {
		if info.Mode()&os.ModeSymlink != 0 || info.IsDir() {
			return "", ErrNotAllowed
		}
	}
	if !m.contained(target) {
		return "", ErrNotAllowed
	}
	return target, nil
}

func (m *Manager) contained(real string) bool {
	for _, root := range m.allowedDirs {
		rel, err := filepath.Rel(root, real)
		if err != nil || rel == "." || rel == "" {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
