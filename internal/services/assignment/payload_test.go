package assignment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTemplateID(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "valid template id", payload: `{"template_id":"tpl-1"}`, want: "tpl-1"},
		{name: "empty payload", payload: "", want: ""},
		{name: "broken json", payload: `{"template_id":`, want: ""},
		{name: "template id is a number", payload: `{"template_id":42}`, want: ""},
		{name: "no template id field", payload: `{"weeks":[]}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTemplateID(json.RawMessage(tt.payload)))
		})
	}
}

func TestParseSupplementEntries(t *testing.T) {
	t.Run("mixed valid and malformed entries", func(t *testing.T) {
		payload := json.RawMessage(`{"entries":[
			{"template_id":"s1","name":"Creatine","dosage":"5g","timing":"morning"},
			{"template_id":"s2"},
			{"name":"orphan"},
			"not an object",
			{"template_id":"s3","name":"Vitamin D"}
		]}`)

		entries, dropped := ParseSupplementEntries(payload)

		require.Len(t, entries, 2)
		assert.Equal(t, "Creatine", entries[0].Name)
		assert.Equal(t, "5g", entries[0].Dosage)
		assert.Equal(t, "Vitamin D", entries[1].Name)
		assert.Equal(t, 3, dropped)
	})

	t.Run("broken json yields nothing", func(t *testing.T) {
		entries, dropped := ParseSupplementEntries(json.RawMessage(`{"entries":`))
		assert.Nil(t, entries)
		assert.Zero(t, dropped)
	})

	t.Run("empty payload yields nothing", func(t *testing.T) {
		entries, dropped := ParseSupplementEntries(nil)
		assert.Nil(t, entries)
		assert.Zero(t, dropped)
	})
}
