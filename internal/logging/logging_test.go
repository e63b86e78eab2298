package logging

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/smartbotics/automate-web/internal/config"
)

func TestSetupLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	Setup(config.LogConfig{Level: "debug", Format: "json"}, os.Stderr)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	Setup(config.LogConfig{Level: "nonsense", Format: "json"}, os.Stderr)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestUseConsole(t *testing.T) {
	assert.True(t, useConsole("console", os.Stderr))
	assert.False(t, useConsole("json", os.Stderr))
}
