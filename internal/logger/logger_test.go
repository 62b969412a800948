package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestStructuredLogger(t *testing.T) {
	t.Run("LogLevelFiltering", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&buf, WarnLevel)

		log.Debug("debug message")
		assert.Empty(t, buf.String(), "debug message should be filtered")

		log.Info("info message")
		assert.Empty(t, buf.String(), "info message should be filtered")

		log.Warn("warn message")
		assert.NotEmpty(t, buf.String(), "warn message should be logged")

		buf.Reset()
		log.Error("error message")
		assert.NotEmpty(t, buf.String(), "error message should be logged")
	})

	t.Run("StructuredFields", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&buf, InfoLevel)

		log.Info("traversal hop failed",
			String("address", "peer.example:7700"),
			Int("hops", 3),
			Error(errors.New("dial tcp: connection refused")),
			Duration("elapsed", 1000000000),
		)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "traversal hop failed", entry["message"])
		assert.Equal(t, "peer.example:7700", entry["address"])
		assert.Equal(t, float64(3), entry["hops"])
		assert.Equal(t, "dial tcp: connection refused", entry["error"])
		assert.Equal(t, "1s", entry["elapsed"])
		assert.NotNil(t, entry["timestamp"])
		assert.NotNil(t, entry["caller"])
	})

	t.Run("ErrorFieldNilSafe", func(t *testing.T) {
		field := Error(nil)
		assert.Equal(t, "error", field.Key)
		assert.Nil(t, field.Value)
	})

	t.Run("PrettyPrint", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewLogger(&buf, InfoLevel)
		log.SetPrettyPrint(true)

		log.Info("test message", String("key", "value"))

		output := buf.String()
		assert.Contains(t, output, "{\n")
		assert.Contains(t, output, "  \"")
		assert.Contains(t, output, "\n}")
	})
}

func TestDefaultLoggerExists(t *testing.T) {
	assert.NotNil(t, GetDefaultLogger())
	assert.Same(t, GetDefaultLogger(), GetDefaultLogger())
}

func TestFieldConstructors(t *testing.T) {
	t.Run("StringField", func(t *testing.T) {
		field := String("key", "value")
		assert.Equal(t, "key", field.Key)
		assert.Equal(t, "value", field.Value)
	})

	t.Run("IntField", func(t *testing.T) {
		field := Int("count", 42)
		assert.Equal(t, "count", field.Key)
		assert.Equal(t, 42, field.Value)
	})
}

func BenchmarkLogger(b *testing.B) {
	log := NewLogger(&bytes.Buffer{}, InfoLevel)

	b.Run("SimpleLog", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			log.Info("benchmark message")
		}
	})

	b.Run("LogWithFields", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			log.Info("benchmark message", String("key1", "value1"), Int("key2", 42))
		}
	})
}
