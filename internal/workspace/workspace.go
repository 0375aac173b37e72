// Package workspace manages the scratch directories a bind or slide writes
// its intermediate files into.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"m4bind/internal/logging"
	"m4bind/internal/services"
)

// Prefix starts every workspace directory name.
const Prefix = "m4bind-"

// Workspace is a lazily created scratch directory owned by one Book.
type Workspace struct {
	root   string
	runID  string
	keep   bool
	logger *slog.Logger

	mu      sync.Mutex
	path    string
	created bool
}

// New returns a handle for a workspace under root ("" means os.TempDir()).
// Nothing is created until Ensure is called.
func New(root string, keep bool, logger *slog.Logger) *Workspace {
	root = strings.TrimSpace(root)
	if root == "" {
		root = os.TempDir()
	}
	runID := uuid.NewString()
	return &Workspace{
		root:   root,
		runID:  runID,
		keep:   keep,
		logger: logging.NewComponentLogger(logger, "workspace"),
		path:   filepath.Join(root, Prefix+runID),
	}
}

// RunID identifies the workspace; it is the directory name suffix.
func (w *Workspace) RunID() string { return w.runID }

// Path returns the workspace directory, whether or not it exists yet.
func (w *Workspace) Path() string { return w.path }

// Keep reports whether Release leaves the directory on disk.
func (w *Workspace) Keep() bool { return w.keep }

// SetKeep changes the retention policy.
func (w *Workspace) SetKeep(keep bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keep = keep
}

// Ensure creates the directory on first use and returns its path.
func (w *Workspace) Ensure() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.created {
		return w.path, nil
	}
	if err := os.MkdirAll(w.path, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "workspace", "create", w.path, err)
	}
	w.created = true
	if w.keep {
		w.logger.Info("keeping temporary files",
			logging.String("path", w.path),
			logging.String(logging.FieldRunID, w.runID),
		)
	}
	return w.path, nil
}

// File returns the path of name inside the workspace, creating the
// workspace if needed.
func (w *Workspace) File(name string) (string, error) {
	dir, err := w.Ensure()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Sub creates and returns a subdirectory of the workspace.
func (w *Workspace) Sub(name string) (string, error) {
	dir, err := w.File(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Release removes the workspace unless it is kept. Calling it more than
// once is harmless.
func (w *Workspace) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.created {
		return nil
	}
	if w.keep {
		w.logger.Debug("workspace retained", logging.String("path", w.path))
		return nil
	}
	if err := os.RemoveAll(w.path); err != nil {
		logging.WarnWithContext(w.logger, "failed to remove workspace", "workspace_cleanup_failed",
			logging.String("path", w.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check workspace_dir permissions"),
			logging.String(logging.FieldImpact, "disk space not reclaimed"),
		)
		return err
	}
	w.created = false
	return nil
}
