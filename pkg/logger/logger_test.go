package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Caso 1: niveles conocidos se mapean y los desconocidos caen en info.
func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.TraceLevel, parseLevel("trace"))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("cualquier-cosa"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}

// Caso 2: el logger nulo acepta eventos sin efecto ni pánico.
func TestNop(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info().Str("k", "v").Msg("descartado")
		l.Error().Msg("descartado")
	})
	assert.Equal(t, zerolog.Disabled, l.Zerolog().GetLevel())
}
