package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptShape struct {
	Character  string `json:"character" validate:"required"`
	Background string `json:"background" validate:"required"`
	Script     string `json:"script" validate:"required"`
}

type variationShape struct {
	ID     string `json:"id" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripFences(` {"a":1} `))
}

func TestParseStructured_FencedObject(t *testing.T) {
	var out scriptShape
	raw := "```json\n{\"character\":\"mèo cam\",\"background\":\"phố cổ\",\"script\":\"...\"}\n```"

	require.NoError(t, ParseStructured(raw, &out))
	assert.Equal(t, "mèo cam", out.Character)
	assert.Equal(t, "phố cổ", out.Background)
}

func TestParseStructured_MissingRequiredField(t *testing.T) {
	var out scriptShape
	err := ParseStructured(`{"character":"a","background":"b"}`, &out)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseStructured_InvalidJSON(t *testing.T) {
	var out scriptShape
	assert.ErrorIs(t, ParseStructured(`{"character":`, &out), ErrMalformedResponse)
}

func TestParseStructured_EmptyBody(t *testing.T) {
	var out scriptShape
	assert.ErrorIs(t, ParseStructured("", &out), ErrMalformedResponse)
	assert.ErrorIs(t, ParseStructured("```json```", &out), ErrMalformedResponse)
}

func TestParseStructured_Array(t *testing.T) {
	var out []variationShape
	require.NoError(t, ParseStructured(`[{"id":"1","prompt":"a"},{"id":"2","prompt":"b"}]`, &out))
	assert.Len(t, out, 2)

	var bad []variationShape
	assert.ErrorIs(t, ParseStructured(`[{"id":"1","prompt":"a"},{"id":"2"}]`, &bad), ErrMalformedResponse)

	for _, body := range []string{"null", "[]", "```json\n[]\n```"} {
		var empty []variationShape
		assert.ErrorIs(t, ParseStructured(body, &empty), ErrMalformedResponse, body)
	}
}

func TestParseStructured_NotMistakenForAuth(t *testing.T) {
	var out scriptShape
	err := ParseStructured(`nope`, &out)
	require.Error(t, err)
	assert.False(t, IsAuthorizationError(err))
}
