package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Title  string   `json:"title" description:"Document title"`
	Status string   `json:"status" enum:"open|closed"`
	Date   string   `json:"date,omitempty" format:"date"`
	Amount float64  `json:"amount" minimum:"0"`
	Tags   []string `json:"tags,omitempty"`
	Note   *string  `json:"note"`
	hidden string
}

func TestCreateSchema(t *testing.T) {
	s := CreateSchema(sampleArgs{})
	assert.Equal(t, "object", s["type"])
	assert.Equal(t, []string{"title", "status", "amount"}, s["required"])

	props := s["properties"].(map[string]any)
	assert.Len(t, props, 6)
	assert.Equal(t, "Document title", props["title"].(map[string]any)["description"])
	assert.Equal(t, []string{"open", "closed"}, props["status"].(map[string]any)["enum"])
	assert.Equal(t, "date", props["date"].(map[string]any)["format"])
	assert.Equal(t, 0.0, props["amount"].(map[string]any)["minimum"])
	assert.Equal(t, map[string]any{"type": "string"}, props["tags"].(map[string]any)["items"])
}

func TestCreateSchema_NonStruct(t *testing.T) {
	s := CreateSchema(42)
	assert.Equal(t, map[string]any{}, s["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := CreateSchema(sampleArgs{})
	valid := map[string]any{"title": "x", "status": "open", "amount": 10.0, "date": "2024-05-01"}
	require.NoError(t, ValidateParameters(valid, schema))

	cases := []struct {
		name   string
		params map[string]any
		field  string
	}{
		{"missing required", map[string]any{"status": "open", "amount": 1.0}, "title"},
		{"wrong type", map[string]any{"title": 1, "status": "open", "amount": 1.0}, "title"},
		{"bad enum", map[string]any{"title": "x", "status": "pending", "amount": 1.0}, "status"},
		{"bad date", map[string]any{"title": "x", "status": "open", "amount": 1.0, "date": "01/05/2024"}, "date"},
		{"negative", map[string]any{"title": "x", "status": "open", "amount": -1.0}, "amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateParameters(tc.params, schema)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestValidateParameters_DecodedRequired(t *testing.T) {
	schema := map[string]any{"required": []any{"q"}, "properties": map[string]any{}}
	assert.Error(t, ValidateParameters(map[string]any{}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"q": "x"}, schema))
}
