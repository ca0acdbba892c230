package listing

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DiskStats holds capacity figures for the filesystem backing a root.
type DiskStats struct {
	TotalSize int64
	FreeSpace int64
}

// DiskUsage returns the capacity figures for the filesystem containing path.
func DiskUsage(path string) (DiskStats, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return DiskStats{}, fmt.Errorf("(listing) failed to statfs: %w", err)
	}

	return DiskStats{
		TotalSize: int64(stat.Blocks) * int64(stat.Bsize),
		FreeSpace: int64(stat.Bavail) * int64(stat.Bsize),
	}, nil
}
