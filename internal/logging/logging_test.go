package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, Level(false, false))
	assert.Equal(t, zerolog.InfoLevel, Level(true, false))
	assert.Equal(t, zerolog.DebugLevel, Level(false, true))
	assert.Equal(t, zerolog.DebugLevel, Level(true, true))
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel).WithName("test")

	log.Info("hello", "adc", 512)
	log.V(1).Info("hidden")

	out := buf.String()
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"adc":512`)
	assert.Contains(t, out, `"logger":"test"`)
	assert.NotContains(t, out, "hidden")
}
