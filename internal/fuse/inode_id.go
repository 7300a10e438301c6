package fuse

import "hash/fnv"

// stableIno returns a stable inode number for a given path string.
func stableIno(path string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(path))
	return h.Sum64()
}

// sliceAt returns the part of data a read at off of len(dest) bytes sees.
func sliceAt(data []byte, off int64, n int) []byte {
	if off >= int64(len(data)) {
		return nil
	}
	end := off + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[off:end]
}
