package gallery

import (
	"testing"

	"github.com/cnosuke/sheet-gallery/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_Images(t *testing.T) {
	body := `[
		{"imageUrl":"https://example.com/1.png","caption":"One","link":"https://example.com/1"},
		{"imageUrl":"https://example.com/2.png"},
		{"imageUrl":"https://example.com/3.png","caption":"","link":""}
	]`

	payload, err := DecodePayload([]byte(body))

	require.NoError(t, err)
	assert.Equal(t, types.PayloadImages, payload.Kind)
	assert.False(t, payload.IsError())
	assert.Equal(t, []types.ImageRecord{
		{ImageURL: "https://example.com/1.png", Caption: "One", Link: "https://example.com/1"},
		{ImageURL: "https://example.com/2.png"},
		{ImageURL: "https://example.com/3.png"},
	}, payload.Images)
}

func TestDecodePayload_EmptyList(t *testing.T) {
	payload, err := DecodePayload([]byte(`[]`))

	require.NoError(t, err)
	assert.Equal(t, types.PayloadImages, payload.Kind)
	assert.NotNil(t, payload.Images)
	assert.Empty(t, payload.Images)
}

func TestDecodePayload_Error(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"error":"Sheet not found"}`))

	require.NoError(t, err)
	assert.True(t, payload.IsError())
	assert.Equal(t, "Sheet not found", payload.Message)
	assert.Nil(t, payload.Images)
}

func TestDecodePayload_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{name: "html error page", body: "<html>Service unavailable</html>", target: ErrInvalidJSON},
		{name: "truncated array", body: `[{"imageUrl":"x"`, target: ErrInvalidJSON},
		{name: "empty body", body: "", target: ErrInvalidJSON},
		{name: "object without error", body: `{"images":[]}`, target: ErrUnexpectedPayload},
		{name: "empty error field", body: `{"error":""}`, target: ErrUnexpectedPayload},
		{name: "null", body: `null`, target: ErrUnexpectedPayload},
		{name: "string", body: `"hello"`, target: ErrUnexpectedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := DecodePayload([]byte(tt.body))
			require.Error(t, err)
			assert.Nil(t, payload)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestDecodePayload_NonObjectItems(t *testing.T) {
	payload, err := DecodePayload([]byte(`[1, "text", {"caption":"only caption"}]`))

	require.NoError(t, err)
	require.Len(t, payload.Images, 3)
	assert.Equal(t, types.ImageRecord{}, payload.Images[0])
	assert.Equal(t, types.ImageRecord{}, payload.Images[1])
	assert.Equal(t, "only caption", payload.Images[2].Caption)
}

func TestDecodePayload_NullRecord(t *testing.T) {
	payload, err := DecodePayload([]byte(`[{"imageUrl":"https://example.com/1.png"}, null]`))

	require.Error(t, err)
	assert.Nil(t, payload)
	assert.True(t, errors.Is(err, ErrUnexpectedPayload))
	assert.Contains(t, err.Error(), "record 1 is null")
}

func TestDecodePayload_SyntaxErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "missing value", body: `{"imageUrl": }`, expected: "invalid character '}' looking for beginning of value"},
		{name: "truncated", body: `[{"imageUrl":"x"`, expected: "unexpected end of JSON input"},
		{name: "empty", body: ``, expected: "unexpected end of JSON input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload([]byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.expected, err.Error())
			assert.True(t, errors.Is(err, ErrInvalidJSON))
		})
	}
}

func TestDecodePayload_DuplicateKeys(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"error":"a","error":"b"}`))
	require.NoError(t, err)
	assert.Equal(t, "b", payload.Message)

	payload, err = DecodePayload([]byte(`[{"caption":"first","caption":"second","link":"x","link":""}]`))
	require.NoError(t, err)
	require.Len(t, payload.Images, 1)
	assert.Equal(t, "second", payload.Images[0].Caption)
	assert.Empty(t, payload.Images[0].Link)
}
