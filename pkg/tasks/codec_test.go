package tasks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/paise/pkg/tasks"
)

func TestEncodeDecodePayload_RoundTrip(t *testing.T) {
	payload := tasks.Payload{
		"source_url": "https://example.com/a",
		"raw":        []byte{0x00, 0x01, 0xFF, 'h', 'i'},
		"nested": tasks.Payload{
			"blob": []byte("nested-bytes"),
			"n":    float64(3),
		},
		"list": []interface{}{
			[]byte("one"),
			"two",
		},
	}

	wire, err := tasks.EncodePayload(payload)
	require.NoError(t, err)

	decoded := tasks.DecodePayload(wire)
	assert.Equal(t, "https://example.com/a", decoded["source_url"])
	assert.Equal(t, []byte{0x00, 0x01, 0xFF, 'h', 'i'}, decoded["raw"])

	nested, ok := decoded["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, []byte("nested-bytes"), nested["blob"])
	assert.Equal(t, float64(3), nested["n"])

	list, ok := decoded["list"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []byte("one"), list[0])
	assert.Equal(t, "two", list[1])
}

func TestEncodePayload_PlainStringsUnaffected(t *testing.T) {
	wire, err := tasks.EncodePayload(tasks.Payload{"title": "hello world"})
	require.NoError(t, err)
	decoded := tasks.DecodePayload(wire)
	assert.Equal(t, "hello world", decoded["title"])
}
