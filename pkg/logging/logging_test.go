// pkg/logging/logging_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test logger setup and contextual logger creation

package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{name: "default_is_warn", verbosity: 0, wantLevel: zerolog.WarnLevel},
		{name: "v_is_info", verbosity: 1, wantLevel: zerolog.InfoLevel},
		{name: "vv_is_debug", verbosity: 2, wantLevel: zerolog.DebugLevel},
		{name: "vvv_is_trace", verbosity: 3, wantLevel: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.verbosity)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestGetLogger(t *testing.T) {
	SetupLogger(0)
	logger := GetLogger("walker")
	// The component logger must be usable without panicking
	logger.Debug().Str("path", "a/b").Msg("test entry")
}
