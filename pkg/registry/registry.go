// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

//go:embed activities.json
var embeddedActivities []byte

// Categories used in activities.json.
const (
	CategorySkill  = "skill"
	CategoryWorker = "worker"
	CategoryStage  = "stage"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return Parse(embeddedActivities)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry: %w", err)
	}
	return &reg, nil
}

// Find looks an activity up by ID.
func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ByCategory returns the activities of one category in file order.
func (r *ActivityRegistry) ByCategory(category string) []Activity {
	var out []Activity
	for _, a := range r.Activities {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ErrorCodes returns every error code declared across the registry, sorted.
func (r *ActivityRegistry) ErrorCodes() []string {
	seen := map[string]bool{}
	for _, a := range r.Activities {
		for _, c := range a.ErrorCodes {
			seen[c] = true
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Validate checks the required fields and that IDs are unique.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		switch activity.Category {
		case CategorySkill, CategoryWorker, CategoryStage:
		case "":
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		default:
			return fmt.Errorf("activity %s has unknown category %q", activity.ID, activity.Category)
		}
	}
	return nil
}
