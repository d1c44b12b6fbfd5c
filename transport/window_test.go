package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowConfig_IdleInterval(t *testing.T) {
	assert.Equal(t, DefaultIdleInterval, WindowConfig{}.idleInterval())
	assert.Equal(t, DefaultIdleInterval, WindowConfig{IdleInterval: -time.Second}.idleInterval())
	assert.Equal(t, 5*time.Millisecond, WindowConfig{IdleInterval: 5 * time.Millisecond}.idleInterval())
}
