package downloader

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileMD5 returns the hex MD5 of the file at path
func FileMD5(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// VerifyChecksum compares the file's MD5 with the expected hex digest
func VerifyChecksum(path, expected string) error {
	if path == "" {
		return fmt.Errorf("file path is empty")
	}

	checksum, err := FileMD5(path)
	if err != nil {
		return err
	}

	expected = strings.ToLower(strings.TrimSpace(expected))
	if checksum != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, checksum)
	}
	return nil
}
