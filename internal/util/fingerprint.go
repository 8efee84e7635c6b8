package util

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
)

// fingerprintTail is how many trailing bytes go into a fingerprint
const fingerprintTail = 2048

// FileFingerprint identifies the current content of a file by its size,
// modification time and a CRC32 of its last 2KB. It changes whenever the
// file is rewritten or appended to.
func FileFingerprint(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return "", err
	}

	size := stat.Size()
	readSize := int64(fingerprintTail)
	if size < readSize {
		readSize = size
	}

	if _, err := file.Seek(-readSize, io.SeekEnd); err != nil {
		return "", err
	}

	data := make([]byte, readSize)
	if _, err := io.ReadFull(file, data); err != nil {
		return "", err
	}

	return fmt.Sprintf("%d-%d-%08x", size, stat.ModTime().UnixNano(), crc32.ChecksumIEEE(data)), nil
}
