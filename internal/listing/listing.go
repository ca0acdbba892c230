// Package listing implements the size-bounded directory lister. A listing
// describes an entire subtree, one entry per visited directory, and is
// greedily truncated so its serialized form always fits the response budget:
// breadth is sacrificed before depth, and deeper levels are dropped outright
// once the budget is reached.
package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// ResponseSizeLimit is the byte budget for a serialized [Listing].
	ResponseSizeLimit = 2048

	// maxItemsSoftCap is the soft cap on shown items per directory level,
	// split evenly between subdirectory and file names.
	maxItemsSoftCap = 100
)

const (
	// MsgPathNotExist is returned when the listing target does not exist.
	MsgPathNotExist = "Path does not exist"

	// sizeLimitNotice is attached at the top level once deeper levels had
	// to be dropped to stay within [ResponseSizeLimit].
	sizeLimitNotice = "Only part of the directory structure is shown due to response size limitation"
)

// Entry describes the immediate children of one visited directory.
type Entry struct {
	Dirs    []string `json:"dirs"`
	Files   []string `json:"files"`
	Warning string   `json:"warning,omitempty"`
}

// Listing is one complete ls response. Entries are keyed by their path
// relative to the current root, with the walk root itself keyed as ".".
// Error is mutually exclusive with all other fields.
type Listing struct {
	Entries     map[string]*Entry
	CurrentPath string
	Warning     string
	Error       string
}

// MarshalJSON flattens the listing into the wire object: one key per visited
// directory, plus current_path and the optional top-level warning. An error
// listing serializes to an object holding nothing but the error.
func (l *Listing) MarshalJSON() ([]byte, error) {
	if l.Error != "" {
		return json.Marshal(map[string]string{"error": l.Error}) //nolint:wrapcheck
	}

	obj := make(map[string]any, len(l.Entries)+2) //nolint:mnd
	for key, entry := range l.Entries {
		obj[key] = entry
	}

	obj["current_path"] = l.CurrentPath
	if l.Warning != "" {
		obj["warning"] = l.Warning
	}

	return json.Marshal(obj) //nolint:wrapcheck
}

// UnmarshalJSON is the inverse of [Listing.MarshalJSON].
func (l *Listing) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("(listing) failed to decode: %w", err)
	}

	l.Entries = make(map[string]*Entry, len(raw))

	for key, value := range raw {
		var err error

		switch key {
		case "error":
			err = json.Unmarshal(value, &l.Error)
		case "warning":
			err = json.Unmarshal(value, &l.Warning)
		case "current_path":
			err = json.Unmarshal(value, &l.CurrentPath)
		default:
			entry := &Entry{}
			if err = json.Unmarshal(value, entry); err == nil {
				l.Entries[key] = entry
			}
		}

		if err != nil {
			return fmt.Errorf("(listing) failed to decode %q: %w", key, err)
		}
	}

	return nil
}

// Lister walks directory subtrees into bounded listings.
type Lister struct{}

// NewLister returns a pointer to a new [Lister].
func NewLister() *Lister {
	return &Lister{}
}

// List walks the subtree at rel (relative to root; empty means the root
// itself) and returns its bounded [Listing]. The walk is depth-first in
// enumeration order; shown names are never guaranteed to be sorted. Any read
// failure during the walk discards partial results and yields an error
// listing instead.
func (*Lister) List(root string, rel string) *Listing {
	result := &Listing{
		Entries:     make(map[string]*Entry),
		CurrentPath: root,
	}

	target := root
	if rel != "" {
		target = filepath.Join(root, rel)
	}

	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Listing{Error: MsgPathNotExist}
		}

		return &Listing{Error: err.Error()}
	}

	// Walking a plain file visits nothing; the listing stays empty.
	if !info.IsDir() {
		return result
	}

	stack := []string{target}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := os.ReadDir(dir)
		if err != nil {
			return &Listing{Error: err.Error()}
		}

		dirs := make([]string, 0, len(children))
		files := make([]string, 0, len(children))
		for _, child := range children {
			if child.IsDir() {
				dirs = append(dirs, child.Name())
			} else {
				files = append(files, child.Name())
			}
		}

		key, err := filepath.Rel(root, dir)
		if err != nil {
			return &Listing{Error: err.Error()}
		}

		entry := &Entry{
			Dirs:  capNames(dirs, maxItemsSoftCap/2),  //nolint:mnd
			Files: capNames(files, maxItemsSoftCap/2), //nolint:mnd
		}

		for exceedsBudget(result, key, entry, len(dirs), len(files)) {
			if len(entry.Dirs) == 0 && len(entry.Files) == 0 {
				// Nothing left to trim: drop this level and stop the walk.
				result.Warning = sizeLimitNotice

				return result
			}

			if len(entry.Dirs) > 0 {
				entry.Dirs = entry.Dirs[:len(entry.Dirs)-1]
			}
			if len(entry.Files) > 0 {
				entry.Files = entry.Files[:len(entry.Files)-1]
			}
		}

		if shown := len(entry.Dirs) + len(entry.Files); len(dirs)+len(files) > shown {
			entry.Warning = truncationWarning(len(entry.Dirs), len(entry.Files), len(dirs), len(files))
		}
		result.Entries[key] = entry

		// The walk descends the full subdirectory list, including names
		// that were trimmed out of the shown entry.
		for i := len(dirs) - 1; i >= 0; i-- {
			stack = append(stack, filepath.Join(dir, dirs[i]))
		}
	}

	return result
}

// capNames returns an independent copy of at most limit leading names.
func capNames(names []string, limit int) []string {
	if len(names) > limit {
		names = names[:limit]
	}

	capped := make([]string, len(names))
	copy(capped, names)

	return capped
}

// exceedsBudget measures a trial serialization of the accumulated listing
// plus the candidate entry against [ResponseSizeLimit]. The trial includes
// the entry's truncation warning and a reserved top-level size notice, so a
// shipped listing can never outgrow the budget after the fact.
func exceedsBudget(l *Listing, key string, entry *Entry, totalDirs int, totalFiles int) bool {
	probe := &Listing{
		Entries:     make(map[string]*Entry, len(l.Entries)+1),
		CurrentPath: l.CurrentPath,
		Warning:     sizeLimitNotice,
	}
	for k, e := range l.Entries {
		probe.Entries[k] = e
	}

	trial := &Entry{Dirs: entry.Dirs, Files: entry.Files}
	if shown := len(entry.Dirs) + len(entry.Files); totalDirs+totalFiles > shown {
		trial.Warning = truncationWarning(len(entry.Dirs), len(entry.Files), totalDirs, totalFiles)
	}
	probe.Entries[key] = trial

	serialized, err := json.Marshal(probe)
	if err != nil {
		return true
	}

	return len(serialized) > ResponseSizeLimit
}

func truncationWarning(shownDirs int, shownFiles int, totalDirs int, totalFiles int) string {
	return fmt.Sprintf("Shown %d directories and %d files out of %d directories and %d files",
		shownDirs, shownFiles, totalDirs, totalFiles)
}
