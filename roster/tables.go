package roster

import (
	"encoding/json"
	"fmt"
	"os"
)

// Tables bundles every read-only reference table the engine consumes.
type Tables struct {
	Names        []string `json:"names"`
	Teams        []Team   `json:"teams"`
	SisterGroups []Team   `json:"sisterGroups"`
	Baseline     Baseline `json:"baseline"`
}

// Default returns the compiled-in tables. Slices are copied so callers may
// not mutate the package-level lists.
func Default() Tables {
	return Tables{
		Names:        append([]string(nil), MemberNames...),
		Teams:        append([]Team(nil), MainTeams...),
		SisterGroups: append([]Team(nil), SisterGroups...),
		Baseline:     InitialStats,
	}
}

// LoadFromFile loads table overrides from a JSON file.
func LoadFromFile(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read roster file: %w", err)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON overlays the given JSON on top of Default. Omitted keys keep
// their compiled-in values.
func LoadFromJSON(data []byte) (Tables, error) {
	t := Default()
	var raw struct {
		Names        []string  `json:"names"`
		Teams        []Team    `json:"teams"`
		SisterGroups []Team    `json:"sisterGroups"`
		Baseline     *Baseline `json:"baseline"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Tables{}, fmt.Errorf("parse roster JSON: %w", err)
	}
	if len(raw.Names) > 0 {
		t.Names = raw.Names
	}
	if len(raw.Teams) > 0 {
		t.Teams = raw.Teams
	}
	if len(raw.SisterGroups) > 0 {
		t.SisterGroups = raw.SisterGroups
	}
	if raw.Baseline != nil {
		t.Baseline = *raw.Baseline
	}
	return t, nil
}

// Validate checks the tables can seed a roster of rosterSize members.
func (t Tables) Validate(rosterSize int) error {
	if rosterSize < 0 {
		return fmt.Errorf("roster size must be >= 0")
	}
	if len(t.Names) < rosterSize {
		return fmt.Errorf("name pool too small: %d < %d", len(t.Names), rosterSize)
	}
	seen := make(map[string]struct{}, len(t.Names))
	for _, n := range t.Names {
		if n == "" {
			return fmt.Errorf("empty member name")
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("duplicate member name %q", n)
		}
		seen[n] = struct{}{}
	}
	if len(t.Teams) == 0 {
		return fmt.Errorf("team list is empty")
	}
	if len(t.SisterGroups) == 0 {
		return fmt.Errorf("sister group list is empty")
	}
	return nil
}
