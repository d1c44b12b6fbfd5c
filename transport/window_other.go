//go:build !windows

package transport

// NewWindow is only supported on Windows.
func NewWindow(WindowConfig) (Sink, error) {
	return nil, ErrUnsupported
}
