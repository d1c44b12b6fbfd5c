//go:build !windows && !linux

package shm

func createRegion(string, int) ([]byte, func() error, error) {
	return nil, nil, ErrUnsupported
}
