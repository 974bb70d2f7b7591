//go:build !windows

package preflight

import "golang.org/x/sys/unix"

// getDiskSpace returns total bytes and bytes available to unprivileged users.
func getDiskSpace(path string) (total, free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return uint64(stat.Blocks) * bsize, uint64(stat.Bavail) * bsize, nil
}
