//go:build !windows && !linux

package memory

type osHandle struct{}

func openOSHandle(uint32) (osHandle, error) {
	return osHandle{}, ErrUnsupported
}

func (o osHandle) read(uintptr, []byte) (int, error) {
	return 0, ErrUnsupported
}

func (o osHandle) write(uintptr, []byte) (int, error) {
	return 0, ErrUnsupported
}

func (o osHandle) close() error {
	return nil
}
