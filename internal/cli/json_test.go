package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/layout"
	"github.com/rileyhilliard/gridctl/internal/panels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, buf *bytes.Buffer) JSONEnvelope {
	t.Helper()
	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	return env
}

func TestMachineMode_DefaultValue(t *testing.T) {
	oldMode := machineMode
	defer func() { machineMode = oldMode }()

	machineMode = false
	assert.False(t, MachineMode())

	machineMode = true
	assert.True(t, MachineMode())
}

func TestWriteJSONSuccess_ComplexData(t *testing.T) {
	var buf bytes.Buffer

	data := struct {
		Name  string   `json:"name"`
		Count int      `json:"count"`
		Items []string `json:"items"`
	}{
		Name:  "test",
		Count: 42,
		Items: []string{"a", "b", "c"},
	}
	require.NoError(t, WriteJSONSuccess(&buf, data))

	env := decodeEnvelope(t, &buf)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	dataMap, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test", dataMap["name"])
	assert.Equal(t, float64(42), dataMap["count"]) // JSON numbers are float64
}

func TestWriteJSONError_AllFields(t *testing.T) {
	var buf bytes.Buffer

	details := map[string]string{"endpoint": "http://a:6676"}
	require.NoError(t, WriteJSONError(&buf, ErrCodeHealthFailed, "Poll failed", "Check the endpoint", details))

	env := decodeEnvelope(t, &buf)
	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeHealthFailed, env.Error.Code)
	assert.Equal(t, "Poll failed", env.Error.Message)
	assert.Equal(t, "Check the endpoint", env.Error.Suggestion)

	detailsMap, ok := env.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "http://a:6676", detailsMap["endpoint"])
}

func TestWriteJSONFromError_NilError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONFromError(&buf, nil))

	env := decodeEnvelope(t, &buf)
	assert.False(t, env.Success)
	assert.Nil(t, env.Error)
}

func TestWriteJSONFromError_GenericError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("something went wrong")))

	env := decodeEnvelope(t, &buf)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeUnknown, env.Error.Code)
	assert.Equal(t, "something went wrong", env.Error.Message)
}

func TestWriteJSONFromError_WrappedStructuredError(t *testing.T) {
	var buf bytes.Buffer

	inner := errors.New(errors.ErrEndpoint, "No health endpoints specified", "Use -e")
	require.NoError(t, WriteJSONFromError(&buf, fmt.Errorf("get health: %w", inner)))

	env := decodeEnvelope(t, &buf)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeNoEndpoints, env.Error.Code)
	assert.Equal(t, "No health endpoints specified", env.Error.Message)
	assert.Equal(t, "Use -e", env.Error.Suggestion)
}

func TestErrorToJSON_NilReturnsNil(t *testing.T) {
	assert.Nil(t, ErrorToJSON(nil))
}

func TestErrorToJSON_AllInternalErrorCodes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{errors.ErrConfig, ErrCodeConfigInvalid},
		{errors.ErrEndpoint, ErrCodeNoEndpoints},
		{errors.ErrLayout, ErrCodeLayoutInvalid},
		{errors.ErrPanel, ErrCodeUnknownPanel},
		{errors.ErrFetch, ErrCodeFetchFailed},
		{errors.ErrHealth, ErrCodeHealthFailed},
		{"SOMETHING_ELSE", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got := ErrorToJSON(errors.New(tt.code, "message", ""))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
		})
	}
}

func TestErrorToJSON_ConfigNotFoundVsInvalid(t *testing.T) {
	got := ErrorToJSON(errors.New(errors.ErrConfig, "Cluster 'prod' not found in config", ""))
	assert.Equal(t, ErrCodeConfigNotFound, got.Code)

	got = ErrorToJSON(errors.New(errors.ErrConfig, "Invalid poll interval", ""))
	assert.Equal(t, ErrCodeConfigInvalid, got.Code)
}

func TestErrorToJSON_MissingParameter(t *testing.T) {
	err := &panels.MissingParameterError{Panel: "cache-access", Param: panels.ParamCache}
	got := ErrorToJSON(fmt.Errorf("resolve: %w", err))

	require.NotNil(t, got)
	assert.Equal(t, ErrCodeMissingParameter, got.Code)
	assert.Equal(t, "'cache-access' requires a cache", got.Message)
	assert.Equal(t, "Pass it with -C/--cache-name", got.Suggestion)
	assert.Equal(t, map[string]interface{}{
		"panel": "cache-access",
		"param": "cache",
		"flag":  "-C/--cache-name",
	}, got.Details)
}

func TestErrorToJSON_UnknownPanel(t *testing.T) {
	got := ErrorToJSON(&layout.UnknownPanelError{ID: "bogus", Expr: "members,bogus"})
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeUnknownPanel, got.Code)
	assert.Contains(t, got.Message, "unknown panel 'bogus'")
	assert.Equal(t, map[string]interface{}{"panel": "bogus", "layout": "members,bogus"}, got.Details)

	got = ErrorToJSON(&panels.NotFoundError{ID: "nope"})
	assert.Equal(t, ErrCodeUnknownPanel, got.Code)
}

func TestJSONError_OmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(JSONError{Code: ErrCodeUnknown, Message: "m"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "suggestion")
	assert.NotContains(t, string(b), "details")
}

func TestErrorCodes_AreUnique(t *testing.T) {
	codes := []string{
		ErrCodeConfigNotFound, ErrCodeConfigInvalid, ErrCodeNoEndpoints, ErrCodeLayoutInvalid,
		ErrCodeUnknownPanel, ErrCodeMissingParameter, ErrCodeFetchFailed, ErrCodeHealthFailed,
		ErrCodeUnknown,
	}
	seen := make(map[string]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
		assert.Equal(t, strings.ToUpper(c), c, "codes are upper snake case")
	}
}
