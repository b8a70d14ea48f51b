// Package mmap maps persisted region files into memory for reading.
//
// A Region is read-only. Callers copy what they need out of Data and Close the
// region; the mapping must not be used after Close.
package mmap

import (
	"fmt"
	"os"
)

// Region is one file mapped read-only into memory.
type Region struct {
	Path string
	Data []byte

	mapped bool
}

// Open maps the whole file at path. Empty files yield an empty Region without
// a mapping, since a zero-length mmap is invalid.
func Open(path string) (*Region, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	size := info.Size()
	if size == 0 {
		return &Region{Path: path}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("%s: size %d exceeds the address space", path, size)
	}

	data, mapped, err := mapFile(file, int(size))
	if err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	return &Region{Path: path, Data: data, mapped: mapped}, nil
}

// Len returns the mapped size in bytes.
func (r *Region) Len() int { return len(r.Data) }

// Close releases the mapping. It is safe to call more than once.
func (r *Region) Close() error {
	if r.Data == nil {
		return nil
	}
	data := r.Data
	r.Data = nil
	if !r.mapped {
		return nil
	}
	return unmapFile(data)
}
