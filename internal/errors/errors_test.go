package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrEndpoint,
		ErrLayout,
		ErrPanel,
		ErrFetch,
		ErrHealth,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid configuration in .gridctl.yaml",
			suggestion: "Check your configuration file syntax",
		},
		{
			name:       "layout error",
			code:       ErrLayout,
			message:    "Unknown panel 'bogus' in layout",
			suggestion: "Run 'gridctl monitor cluster --show-panels'",
		},
		{
			name:       "endpoint error",
			code:       ErrEndpoint,
			message:    "No health endpoints specified",
			suggestion: "Use -e or -n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check .gridctl.yaml syntax"),
			expectedParts: []string{"✗", "Invalid configuration", "Check .gridctl.yaml syntax"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrFetch, "Fetch failed", ""),
			expectedParts: []string{"Fetch failed"},
			notExpected:   []string{"suggestion"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, "GET /members failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrFetch, wrapped.Code, "Wrap should default to ErrFetch code")
	assert.Equal(t, cause, wrapped.Cause)
	assert.True(t, errors.Is(wrapped, cause))
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("file not found")
	wrapped := WrapWithCode(cause, ErrConfig, "Failed to load config", "Create .gridctl.yaml")

	assert.Equal(t, ErrConfig, wrapped.Code)
	assert.Equal(t, "Create .gridctl.yaml", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 10.0.0.1:6676: connect: connection refused"),
		ErrEndpoint,
		"Cannot resolve health endpoints",
		"Check the -n host:port value",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Cannot resolve health endpoints")
}

func TestIsCode(t *testing.T) {
	err := New(ErrLayout, "Layout error", "")

	assert.True(t, IsCode(err, ErrLayout))
	assert.True(t, IsCode(fmt.Errorf("starting dashboard: %w", err), ErrLayout))
	assert.False(t, IsCode(err, ErrPanel))
	assert.False(t, IsCode(errors.New("standard error"), ErrLayout))
	assert.False(t, IsCode(nil, ErrLayout))
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantMsg string
	}{
		{name: "zero exit code", code: 0, wantMsg: "exit code 0"},
		{name: "not safe", code: 1, wantMsg: "exit code 1"},
		{name: "other", code: 3, wantMsg: "exit code 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExitError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{name: "ExitError returns code", err: NewExitError(1), wantCode: 1, wantOk: true},
		{name: "wrapped ExitError", err: fmt.Errorf("wait: %w", NewExitError(1)), wantCode: 1, wantOk: true},
		{name: "standard error", err: errors.New("boom"), wantOk: false},
		{name: "nil error", err: nil, wantOk: false},
		{name: "structured Error", err: New(ErrHealth, "x", ""), wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
