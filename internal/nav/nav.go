// Package nav tracks the server-wide current root. The root is shared by all
// sessions and guarded by a mutex, so concurrent cd and ls requests observe a
// consistent path instead of racing on it.
package nav

import (
	"os"
	"path/filepath"
	"sync"
)

const (
	// MsgOK acknowledges a successful root change.
	MsgOK = "OK"

	// MsgAboveRoot rejects navigation above the filesystem root.
	MsgAboveRoot = "Cannot go above the root directory"

	// MsgInvalidPath rejects navigation to a missing or non-directory target.
	MsgInvalidPath = "Invalid directory path"
)

// Navigator holds the single mutable current root of a server process.
type Navigator struct {
	mu   sync.RWMutex
	root string
}

// NewNavigator returns a pointer to a new [Navigator] rooted at root.
// The root must name an existing directory; every rejected change leaves
// it untouched, so that invariant holds for the navigator's lifetime.
func NewNavigator(root string) *Navigator {
	return &Navigator{root: root}
}

// Root returns a snapshot of the current root.
func (n *Navigator) Root() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.root
}

// ChangeRoot validates and applies a root change. ".." moves to the parent
// directory and fails idempotently once the current root is the filesystem
// root; any other target is resolved relative to the current root and must
// name an existing directory. The returned message is the wire literal sent
// back to the client.
func (n *Navigator) ChangeRoot(target string) (bool, string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if target == ".." {
		parent := filepath.Dir(n.root)
		if parent == n.root {
			return false, MsgAboveRoot
		}

		info, err := os.Stat(parent)
		if err != nil || !info.IsDir() {
			return false, MsgAboveRoot
		}

		n.root = parent

		return true, MsgOK
	}

	joined := filepath.Join(n.root, target)

	info, err := os.Stat(joined)
	if err != nil || !info.IsDir() {
		return false, MsgInvalidPath
	}

	n.root = joined

	return true, MsgOK
}
