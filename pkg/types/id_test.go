package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want ID
	}{
		{"number", `{"id": 42}`, "42"},
		{"string", `{"id": "64b7f0a1c2"}`, "64b7f0a1c2"},
		{"null", `{"id": null}`, ""},
		{"missing", `{}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v struct {
				ID ID `json:"id"`
			}
			require.NoError(t, json.Unmarshal([]byte(tc.in), &v))
			assert.Equal(t, tc.want, v.ID)
		})
	}
}

func TestID_UnmarshalJSON_Invalid(t *testing.T) {
	var v struct {
		ID ID `json:"id"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &v))
}

func TestID_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		ID ID `json:"id"`
	}{ID: IDFromUint(7)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7"}`, string(b))
}
