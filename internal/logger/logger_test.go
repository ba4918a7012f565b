package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := InitLoggerWithOutput("warn", false, &buf)

	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	WithComponent("derive").Warn("source missing")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "derive", entry["component"])
	assert.Equal(t, "source missing", entry["msg"])
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := InitLoggerWithOutput("loud", true, &buf)

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestInitLogger_DevelopmentDefaultsToDebug(t *testing.T) {
	var buf bytes.Buffer
	log := InitLoggerWithOutput("", true, &buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Same(t, log, GetLogger())
}
