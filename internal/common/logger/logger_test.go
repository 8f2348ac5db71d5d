package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestIsSensitive(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"age", true},
		{"examScore", true},
		{"EXAMSCORE", true},
		{"interviewScore", true},
		{"birthDate", true},
		{"identity", false},
		{"txHash", false},
		{"totalPoints", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSensitive(tt.key))
		})
	}
}

func TestLogger_RedactsAttributes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.Info("validated applicant", map[string]interface{}{
		"age":       15,
		"examScore": 85,
		"identity":  "0xabc",
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, Redacted, fields["age"])
	assert.Equal(t, Redacted, fields["examScore"])
	assert.Equal(t, "0xabc", fields["identity"])
}

func TestLogger_WithFieldsRedacts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"incomeBracket": 2})

	log.Warn("scoped", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, Redacted, logs.All()[0].ContextMap()["incomeBracket"])
}

func TestNew_Levels(t *testing.T) {
	l := New("warn", "json")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	d := New("debug", "console")
	assert.True(t, d.Core().Enabled(zapcore.DebugLevel))
}
