// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/internal/logging"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gatehouse", "test", "json", &buf)

	logger.Info("hello", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "gatehouse", entry["service"])
	assert.Equal(t, "test", entry["version"])
	assert.Equal(t, "value", entry["key"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gatehouse", "test", "text", &buf)

	logger.Info("hello")

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=hello"))
	assert.True(t, strings.Contains(out, "service=gatehouse"))
}

func TestSetup_DefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gatehouse", "test", "", &buf)

	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
}

func TestSetup_WithAttrsPreservesService(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Setup("gatehouse", "test", "json", &buf)

	logger.With("request_id", "abc").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "gatehouse", entry["service"])
}
