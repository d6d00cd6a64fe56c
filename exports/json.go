package exports

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Mause/tuya-graphing/data"
)

const FILE_MODE os.FileMode = 0644

// Write the raw events of every device as one JSON object keyed by device name, overwriting path.
func WriteJSON(path string, events map[string][]data.Event) error {
	if events == nil {
		events = map[string][]data.Event{}
	}
	encoded, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("error while encoding raw events: %w", err)
	}
	err = os.WriteFile(path, append(encoded, '\n'), FILE_MODE)
	if err != nil {
		return fmt.Errorf("error while writing raw events to %v: %w", path, err)
	}
	return nil
}
