package exports

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mause/tuya-graphing/data"
)

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.json")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new file"), 0644))

	err := WriteJSON(path, map[string][]data.Event{
		"Kitchen": {{Code: "temp", EventTime: time.UnixMilli(1700000000123).UTC(), Value: data.StringOf("23")}},
		"Plug":    {},
	})

	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "Kitchen": [
    {
      "code": "temp",
      "event_time": "2023-11-14T22:13:20.123Z",
      "value": "23"
    }
  ],
  "Plug": []
}
`, string(written))
}

func TestWriteJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.json")

	require.NoError(t, WriteJSON(path, nil))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(written))
}

func TestWriteJSON_BadPath(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "telemetry.json"), nil)
	assert.ErrorContains(t, err, "error while writing raw events")
}
