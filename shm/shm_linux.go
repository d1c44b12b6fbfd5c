//go:build linux

package shm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const devShm = "/dev/shm"

func shmPath(name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("name %q cannot contain '/'", name)
	}

	return filepath.Join(devShm, name), nil
}

func createRegion(name string, capacity int) ([]byte, func() error, error) {
	path, err := shmPath(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	err = f.Truncate(int64(capacity))
	if err != nil {
		os.Remove(path)
		return nil, nil, fmt.Errorf("failed to size %q - %w", path, err)
	}

	region, err := unix.Mmap(int(f.Fd()), 0, capacity,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		os.Remove(path)
		return nil, nil, fmt.Errorf("failed to map %q - %w", path, err)
	}

	release := func() error {
		unmapErr := unix.Munmap(region)
		removeErr := os.Remove(path)
		return errors.Join(unmapErr, removeErr)
	}

	return region, release, nil
}
