package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportOf_CodedError(t *testing.T) {
	// Given: a coded error with details, suggestion and a distinct cause
	err := New(ErrCodeFileNotFound, "file not found", errors.New("open index.yaml: no such file")).
		WithDetail("path", "/srv/index.yaml").
		WithSuggestion("Check the file path")

	// When: flattening it
	r := ReportOf(err)

	// Then: every field is carried over
	require.NotNil(t, r)
	assert.Equal(t, ErrCodeFileNotFound, r.Code)
	assert.Equal(t, "file not found", r.Message)
	assert.Equal(t, string(CategoryIO), r.Category)
	assert.Equal(t, string(SeverityError), r.Severity)
	assert.Equal(t, "Check the file path", r.Suggestion)
	assert.Equal(t, "open index.yaml: no such file", r.Cause)
	assert.Equal(t, map[string]string{"path": "/srv/index.yaml"}, r.Details)
}

func TestReportOf_PlainErrorIsInternal(t *testing.T) {
	r := ReportOf(errors.New("something went wrong"))

	require.NotNil(t, r)
	assert.Equal(t, ErrCodeInternal, r.Code)
	assert.Equal(t, "something went wrong", r.Message)
	assert.Empty(t, r.Cause, "a cause equal to the message is dropped")
}

func TestReportOf_FindsWrappedCode(t *testing.T) {
	inner := New(ErrCodeDuplicateContribution, "analyzers/autocomplete contributed twice", nil)

	r := ReportOf(errors.Join(errors.New("products.yaml"), inner))

	assert.Equal(t, ErrCodeDuplicateContribution, r.Code)
}

func TestReportOf_Nil(t *testing.T) {
	assert.Nil(t, ReportOf(nil))
}

func TestFormatForCLI(t *testing.T) {
	// Given: an error with suggestion, cause and details
	err := New(ErrCodeMappingFailed, "bleve rejected mapping", errors.New("no analyzer named autocomplete")).
		WithDetail("path", "products.yaml").
		WithSuggestion("Run 'indexify compose --validate' for details")

	// When: formatting for the terminal
	result := FormatForCLI(err)

	// Then: message, hint and code, nothing more
	assert.Equal(t, "Error: bleve rejected mapping\n"+
		"  Hint: Run 'indexify compose --validate' for details\n"+
		"  Code: ERR_503_MAPPING_FAILED\n", result)
}

func TestFormatForCLI_PlainAndNil(t *testing.T) {
	assert.Empty(t, FormatForCLI(nil))

	result := FormatForCLI(errors.New("generic error"))
	assert.Contains(t, result, "Error: generic error")
	assert.Contains(t, result, "Code: ERR_501_INTERNAL")
}

func TestFormatForDebug_AddsCauseAndDetails(t *testing.T) {
	// Given: a compose error with details added out of key order
	err := New(ErrCodeComposeFailed, "composition failed", errors.New("analyzers/autocomplete: key already exists")).
		WithDetail("path", "products.yaml").
		WithDetail("key", "autocomplete")

	// When: formatting for a debug run
	result := FormatForDebug(err)

	// Then: cause and details appear between hint and code, details sorted
	lines := strings.Split(strings.TrimSpace(result), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Error: composition failed", lines[0])
	assert.Equal(t, "  Cause: analyzers/autocomplete: key already exists", lines[1])
	assert.Equal(t, "  key: autocomplete", lines[2])
	assert.Equal(t, "  path: products.yaml", lines[3])
	assert.Equal(t, "  Code: ERR_502_COMPOSE_FAILED", lines[4])
	assert.NotContains(t, FormatForCLI(err), "Cause:")
}

func TestFormatJSON(t *testing.T) {
	// Given: an IndexifyError with details
	err := New(ErrCodeFileNotFound, "file not found", nil).
		WithDetail("path", "/srv/index.yaml").
		WithSuggestion("Check the file path")

	// When: formatting as JSON
	data, jsonErr := FormatJSON(err)

	// Then: valid JSON with the expected fields
	require.NoError(t, jsonErr)
	var result map[string]any
	require.NoError(t, json.Unmarshal(data, &result))

	assert.Equal(t, ErrCodeFileNotFound, result["code"])
	assert.Equal(t, "file not found", result["message"])
	assert.Equal(t, string(CategoryIO), result["category"])
	assert.Equal(t, "Check the file path", result["suggestion"])
	assert.NotContains(t, result, "cause")
	details, ok := result["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/srv/index.yaml", details["path"])
}

func TestFormatJSON_Nil(t *testing.T) {
	data, err := FormatJSON(nil)

	assert.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestLogAttrs(t *testing.T) {
	// Given: a JSON logger and a coded error
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	err := New(ErrCodeDuplicateContribution, "duplicate", errors.New("cause")).
		WithDetail("key", "autocomplete")

	// When: logging the error's attributes
	logger.LogAttrs(t.Context(), slog.LevelWarn, "compose_failed", LogAttrs(err)...)

	// Then: the record carries the code, cause and grouped details
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "compose_failed", record["msg"])
	assert.Equal(t, ErrCodeDuplicateContribution, record["error_code"])
	assert.Equal(t, "cause", record["cause"])
	assert.Equal(t, map[string]any{"key": "autocomplete"}, record["details"])
	assert.Nil(t, LogAttrs(nil))
}
