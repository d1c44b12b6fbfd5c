//go:build !windows

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWindow_Unsupported(t *testing.T) {
	sink, err := NewWindow(WindowConfig{Title: "test"})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, sink)
}
