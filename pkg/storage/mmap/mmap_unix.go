//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps size bytes of file read-only.
// MAP_SHARED keeps the mapping backed by the page cache instead of private copies.
func mapFile(file *os.File, size int) ([]byte, bool, error) {
	data, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// unmapFile unmaps the memory region, freeing the virtual memory space.
func unmapFile(data []byte) error {
	return unix.Munmap(data)
}
