package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/aleister1102/pagecheck/internal/models"
)

// storageScript copies localStorage into a plain object with keys and values cut to %d
// characters. The result is returned as a JSON string so that the engine hands it back by value.
const storageScript = `() => {
	const limit = %d;
	const out = {};
	const keys = Object.keys(window.localStorage);
	for (let i = 0; i < keys.length; ++i) {
		const value = window.localStorage.getItem(keys[i]) || "";
		out[keys[i].substring(0, limit)] = value.substring(0, limit);
	}
	return JSON.stringify(out);
}`

func buildStorageScript(limit int) string {
	return fmt.Sprintf(storageScript, limit)
}

// parseStorage decodes the script output and applies the limit again on this side; JS counts
// UTF-16 code units while the report counts characters.
func parseStorage(raw string, limit int) (models.StorageSnapshot, error) {
	decoded := map[string]string{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("decode storage snapshot: %w", err)
		}
	}

	snapshot := make(models.StorageSnapshot, len(decoded))
	for k, v := range decoded {
		snapshot[Truncate(k, limit)] = Truncate(v, limit)
	}
	return snapshot, nil
}
