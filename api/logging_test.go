package api

import (
	"bytes"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	saved := apiLogger
	apiLogger = apiLogger.Output(&buf)
	t.Cleanup(func() { apiLogger = saved })

	r := httptest.NewRequest("POST", "/tag?debug=1", strings.NewReader(`{"text":"a"}`))
	reqLogger := newRequestLogger(r)
	reqLogger.Info().Msg("hello")

	var line struct {
		Request requestFields `json:"request"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "POST", line.Request.Method)
	assert.Equal(t, "/tag", line.Request.Path)
	assert.Equal(t, int64(12), line.Request.ContentLength)
	assert.NotEmpty(t, line.Request.RemoteAddr)
}
