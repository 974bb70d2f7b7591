package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// DiskSpaceInfo describes the filesystem holding a path.
type DiskSpaceInfo struct {
	// Path is the existing directory that was measured.
	Path        string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// DiskSpaceError reports too little free space.
type DiskSpaceError struct {
	Path      string
	Required  uint64
	Available uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
		e.Path, humanize.IBytes(e.Required), humanize.IBytes(e.Available))
}

// GetDiskSpace measures the filesystem containing path. A path that does not
// exist yet is measured at its nearest existing parent.
func GetDiskSpace(path string) (*DiskSpaceInfo, error) {
	dir, err := existingDir(path)
	if err != nil {
		return nil, err
	}

	total, free, err := getDiskSpace(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk space for %s: %w", dir, err)
	}

	info := &DiskSpaceInfo{Path: dir, Total: total, Free: free}
	if total >= free {
		info.Used = total - free
	}
	if total > 0 {
		info.UsedPercent = float64(info.Used) / float64(total) * 100
	}
	return info, nil
}

// CheckDiskSpace returns a *DiskSpaceError when path has less than required
// bytes free.
func CheckDiskSpace(path string, required uint64) (*DiskSpaceInfo, error) {
	info, err := GetDiskSpace(path)
	if err != nil {
		return nil, err
	}
	if info.Free < required {
		return info, &DiskSpaceError{Path: info.Path, Required: required, Available: info.Free}
	}
	return info, nil
}

// String formats the free space for a status line.
func (i *DiskSpaceInfo) String() string {
	return fmt.Sprintf("%s free of %s (%.0f%% used)", humanize.IBytes(i.Free), humanize.IBytes(i.Total), i.UsedPercent)
}

func existingDir(path string) (string, error) {
	path = filepath.Clean(path)
	for {
		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			return path, nil
		case err == nil:
			path = filepath.Dir(path)
			continue
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("cannot access path %s: %w", path, err)
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", fmt.Errorf("no existing parent directory for %s", path)
		}
		path = parent
	}
}
