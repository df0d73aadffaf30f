package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_ReportsCaller(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Info("hello %d", 1)
	l.Warning("careful")
	l.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "[INFO] ")
	assert.Contains(t, out, "hello 1")
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("logger_test.go:")))
	assert.NotContains(t, out, "logger.go:")
}

func TestLogger_DebugDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.debug = true
	l.Debug("shown")
	assert.Contains(t, buf.String(), "logger_test.go:")
	assert.Contains(t, buf.String(), "shown")
}

func TestPackageFunctions_ReportCaller(t *testing.T) {
	var buf bytes.Buffer
	GetLogger()
	saved := defaultLogger
	defaultLogger = NewWriterLogger(&buf)
	t.Cleanup(func() { defaultLogger = saved })

	Info("via package")
	Error("via package")

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("logger_test.go:")))
	assert.NotContains(t, buf.String(), "logger.go:")
}
