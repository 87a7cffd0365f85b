package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adisetya/sheethub/internal/apperrors"
	"github.com/adisetya/sheethub/internal/domain"
)

func TestParseCSV(t *testing.T) {
	text := strings.Join([]string{
		"title,link,category,owner,tags,description,updated_at",
		`Budget,https://a,Finance,ana,money|quarterly,tracker,2025-03-01`,
		`"Plan, v2",https://b,,,,,`,
	}, "\n")

	rows, err := ParseCSV(text)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Budget", rows[0].Title)
	assert.Equal(t, []string{"money", "quarterly"}, rows[0].Tags)
	assert.Equal(t, "2025-03-01", rows[0].UpdatedAt)
	assert.True(t, strings.HasPrefix(rows[0].ID, "imp_"))

	// quoted comma stays literal
	assert.Equal(t, "Plan, v2", rows[1].Title)
}

func TestParseCSVDoubledQuote(t *testing.T) {
	rows, err := ParseCSV(`"say ""hi""",https://a`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, `say "hi"`, rows[0].Title)
}

func TestParseCSVTrailingFieldsOptional(t *testing.T) {
	rows, err := ParseCSV("OnlyTwo,https://x")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Category)
	assert.Nil(t, rows[0].Tags)
}

func TestParseCSVAllOrNothing(t *testing.T) {
	text := strings.Join([]string{
		"Good,https://a",
		"MissingLink,",
	}, "\n")

	rows, err := ParseCSV(text)
	assert.ErrorIs(t, err, apperrors.ErrImportParse)
	assert.Nil(t, rows)
}

func TestParseCSVErrors(t *testing.T) {
	_, err := ParseCSV(`"unterminated,https://a`)
	assert.ErrorIs(t, err, apperrors.ErrImportParse)

	_, err = ParseCSV("a,b,c,d,e,f,g,h")
	assert.ErrorIs(t, err, apperrors.ErrImportParse)
}

func TestEncodeCSVRoundTrip(t *testing.T) {
	in := []domain.Row{
		{ID: "1", Title: `say "hi", loudly`, Link: "https://a", Category: "Ops", Owner: "ana", Tags: []string{"x", "y"}, Description: "desc, with comma", UpdatedAt: "2025-01-01"},
		{ID: "2", Title: "plain", Link: "https://b"},
	}

	out, err := ParseCSV(EncodeCSV(in))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, in[0].Title, out[0].Title)
	assert.Equal(t, in[0].Tags, out[0].Tags)
	assert.Equal(t, in[0].Description, out[0].Description)
	assert.Equal(t, in[1].Title, out[1].Title)
}

func TestParseJSON(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		rows, err := ParseJSON([]byte(`{"items":[{"title":"a","link":"https://a"}]}`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.NotEmpty(t, rows[0].ID)
	})

	t.Run("bare array", func(t *testing.T) {
		rows, err := ParseJSON([]byte(`[{"id":"k","title":"a","link":"https://a"}]`))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "k", rows[0].ID)
	})

	t.Run("invalid row rejects the batch", func(t *testing.T) {
		_, err := ParseJSON([]byte(`[{"title":"a","link":"https://a"},{"title":"b"}]`))
		assert.ErrorIs(t, err, apperrors.ErrImportParse)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{nope`))
		assert.ErrorIs(t, err, apperrors.ErrImportParse)
	})
}
