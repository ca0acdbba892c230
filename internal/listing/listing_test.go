package listing_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsbrowse/fsbrowse/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustWriteFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
}

// TestList_Basic tests a small two-directory tree.
func TestList_Basic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "a"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))
	mustWriteFiles(t, filepath.Join(root, "a"), "one", "two", "three")

	result := listing.NewLister().List(root, "")

	require.Empty(t, result.Error, "expected no error listing an existing tree")
	assert.Equal(t, root, result.CurrentPath, "expected current_path to be the root")
	assert.Empty(t, result.Warning, "expected no size warning on a small tree")

	require.Contains(t, result.Entries, ".", "expected the walk root keyed as '.'")
	rootEntry := result.Entries["."]
	assert.ElementsMatch(t, []string{"a", "b"}, rootEntry.Dirs, "expected both subdirectories shown")
	assert.Empty(t, rootEntry.Files, "expected no files at the walk root")
	assert.Empty(t, rootEntry.Warning, "expected no truncation warning at the walk root")

	require.Contains(t, result.Entries, "a", "expected a visited entry for a")
	assert.ElementsMatch(t, []string{"one", "two", "three"}, result.Entries["a"].Files, "expected all files of a shown")

	require.Contains(t, result.Entries, "b", "expected a visited entry for b")
	assert.Empty(t, result.Entries["b"].Dirs, "expected b to be empty")
	assert.Empty(t, result.Entries["b"].Files, "expected b to be empty")
}

// TestList_Subpath tests that the target is resolved relative to the root and
// that entry keys stay relative to the root, not the target.
func TestList_Subpath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "deep"), 0o755))
	mustWriteFiles(t, filepath.Join(root, "a"), "inside")

	result := listing.NewLister().List(root, "a")

	require.Empty(t, result.Error, "expected no error listing a subpath")
	assert.Equal(t, root, result.CurrentPath, "expected current_path to stay the root, not the subpath")

	require.Contains(t, result.Entries, "a", "expected the walk root keyed relative to the root")
	assert.NotContains(t, result.Entries, ".", "expected no '.' key when walking a subpath")
	require.Contains(t, result.Entries, filepath.Join("a", "deep"), "expected nested keys relative to the root")
}

// TestList_PathNotExist tests the error listing for a missing target.
func TestList_PathNotExist(t *testing.T) {
	t.Parallel()

	result := listing.NewLister().List(t.TempDir(), "missing")

	assert.Equal(t, listing.MsgPathNotExist, result.Error, "expected the nonexistence error literal")
	assert.Empty(t, result.Entries, "expected no entries alongside an error")
}

// TestList_FileTarget tests that walking a plain file yields an empty listing.
func TestList_FileTarget(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteFiles(t, root, "plain.txt")

	result := listing.NewLister().List(root, "plain.txt")

	require.Empty(t, result.Error, "expected no error for an existing file target")
	assert.Empty(t, result.Entries, "expected no entries when the target is not a directory")
	assert.Equal(t, root, result.CurrentPath, "expected current_path to be the root")
}

// TestList_ManyFiles tests the per-level item cap and its exact warning.
func TestList_ManyFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for i := 0; i < 500; i++ {
		mustWriteFiles(t, root, fmt.Sprintf("file_%03d.txt", i))
	}

	result := listing.NewLister().List(root, "")

	require.Empty(t, result.Error, "expected no error on a wide directory")
	require.Contains(t, result.Entries, ".", "expected the walk root entry")

	entry := result.Entries["."]
	assert.Len(t, entry.Files, 50, "expected the file list capped at 50")
	assert.Empty(t, entry.Dirs, "expected no directories")
	assert.Equal(t,
		"Shown 0 directories and 50 files out of 0 directories and 500 files",
		entry.Warning, "expected the exact truncation warning")
}

// TestList_SizeBudget tests that oversized trees are cut to the response
// budget and flagged with the top-level warning.
func TestList_SizeBudget(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	longName := strings.Repeat("n", 40)

	for d := 0; d < 10; d++ {
		dir := filepath.Join(root, fmt.Sprintf("dir_%02d", d))
		require.NoError(t, os.Mkdir(dir, 0o755))

		for f := 0; f < 100; f++ {
			mustWriteFiles(t, dir, fmt.Sprintf("%s_%03d", longName, f))
		}
	}

	result := listing.NewLister().List(root, "")

	require.Empty(t, result.Error, "expected no error on an oversized tree")
	assert.Equal(t,
		"Only part of the directory structure is shown due to response size limitation",
		result.Warning, "expected the top-level size warning once levels were dropped")

	serialized, err := json.Marshal(result)
	require.NoError(t, err, "expected the listing to serialize")
	assert.LessOrEqual(t, len(serialized), listing.ResponseSizeLimit,
		"expected the serialized listing to fit the response budget")
}

// TestList_BudgetProperty tests the budget invariant across differently
// shaped trees.
func TestList_BudgetProperty(t *testing.T) {
	t.Parallel()

	shapes := []struct {
		name  string
		dirs  int
		files int
	}{
		{"Flat_Wide", 0, 300},
		{"Many_Dirs", 60, 70},
		{"Mixed", 20, 200},
	}

	for _, shape := range shapes {
		shape := shape
		t.Run(shape.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			for d := 0; d < shape.dirs; d++ {
				require.NoError(t, os.Mkdir(filepath.Join(root, fmt.Sprintf("sub_directory_%04d", d)), 0o755))
			}
			for f := 0; f < shape.files; f++ {
				mustWriteFiles(t, root, fmt.Sprintf("some_longer_file_name_%04d.bin", f))
			}

			result := listing.NewLister().List(root, "")
			require.Empty(t, result.Error, "expected no error")

			serialized, err := json.Marshal(result)
			require.NoError(t, err, "expected the listing to serialize")
			assert.LessOrEqual(t, len(serialized), listing.ResponseSizeLimit,
				"expected the serialized listing to fit the response budget")
		})
	}
}

// TestList_WarningCounts tests that a shown-count warning reflects the
// truncation exactly for a mixed directory.
func TestList_WarningCounts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for d := 0; d < 60; d++ {
		require.NoError(t, os.Mkdir(filepath.Join(root, fmt.Sprintf("d%02d", d)), 0o755))
	}
	for f := 0; f < 70; f++ {
		mustWriteFiles(t, root, fmt.Sprintf("f%02d.t", f))
	}

	result := listing.NewLister().List(root, "")

	require.Empty(t, result.Error, "expected no error")
	require.Contains(t, result.Entries, ".", "expected the walk root entry")

	entry := result.Entries["."]
	require.Len(t, entry.Dirs, 50, "expected the directory list capped at 50")
	require.Len(t, entry.Files, 50, "expected the file list capped at 50")
	assert.Equal(t,
		"Shown 50 directories and 50 files out of 60 directories and 70 files",
		entry.Warning, "expected the warning counts to match the truncation")
}

// TestList_WalkError tests that a read failure during the walk discards
// partial results in favor of an error listing.
func TestList_WalkError(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	mustWriteFiles(t, locked, "hidden")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result := listing.NewLister().List(root, "")

	require.NotEmpty(t, result.Error, "expected an error listing on a walk failure")
	assert.Empty(t, result.Entries, "expected partial results to be discarded")
}

// TestListing_JSON tests the wire shape of a marshaled listing and its
// decode round trip.
func TestListing_JSON(t *testing.T) {
	t.Parallel()

	t.Run("Success_WireShape", func(t *testing.T) {
		t.Parallel()

		original := &listing.Listing{
			Entries: map[string]*listing.Entry{
				".": {Dirs: []string{"a"}, Files: []string{"f"}},
			},
			CurrentPath: "/srv",
			Warning:     "partial",
		}

		serialized, err := json.Marshal(original)
		require.NoError(t, err, "expected the listing to serialize")

		var flat map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(serialized, &flat))
		assert.Contains(t, flat, ".", "expected entries at the top level")
		assert.Contains(t, flat, "current_path", "expected a top-level current_path")
		assert.Contains(t, flat, "warning", "expected the top-level warning")
		assert.NotContains(t, flat, "error", "expected no error key on a healthy listing")

		decoded := &listing.Listing{}
		require.NoError(t, json.Unmarshal(serialized, decoded))
		assert.Equal(t, original.CurrentPath, decoded.CurrentPath)
		assert.Equal(t, original.Warning, decoded.Warning)
		assert.Equal(t, original.Entries["."].Dirs, decoded.Entries["."].Dirs)
	})

	t.Run("Success_ErrorShape", func(t *testing.T) {
		t.Parallel()

		serialized, err := json.Marshal(&listing.Listing{Error: "boom", CurrentPath: "/srv"})
		require.NoError(t, err, "expected the error listing to serialize")

		var flat map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(serialized, &flat))
		assert.Contains(t, flat, "error", "expected the error key")
		assert.NotContains(t, flat, "current_path", "expected nothing but the error key")
	})
}
