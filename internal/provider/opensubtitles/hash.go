package opensubtitles

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// hashChunkSize is the size of the window hashed at each end of the file.
const hashChunkSize = 65536

// ErrFileTooSmall is returned for files shorter than two hash windows.
var ErrFileTooSmall = errors.New("file too small")

// FileHash returns the size of the file at path and its content hash: the
// file size plus every little-endian 64-bit word of the first and the last
// 64 KiB, wrapping on overflow, as 16 lowercase hex digits.
func FileHash(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", fmt.Errorf("unable to hash file '%s': %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, "", fmt.Errorf("unable to hash file '%s': %w", path, err)
	}

	hash, err := computeHash(f, info.Size())
	if err != nil {
		return 0, "", fmt.Errorf("error while hashing file '%s': %w", path, err)
	}
	return info.Size(), hash, nil
}

func computeHash(r io.ReaderAt, size int64) (string, error) {
	if size < 2*hashChunkSize {
		return "", ErrFileTooSmall
	}

	sum := uint64(size)
	buf := make([]byte, hashChunkSize)
	for _, offset := range []int64{0, size - hashChunkSize} {
		if _, err := io.ReadFull(io.NewSectionReader(r, offset, hashChunkSize), buf); err != nil {
			return "", fmt.Errorf("end of file error: %w", err)
		}
		for i := 0; i < hashChunkSize; i += 8 {
			sum += binary.LittleEndian.Uint64(buf[i : i+8])
		}
	}
	return fmt.Sprintf("%016x", sum), nil
}
