// Package checkpoint serializes and reloads planner tree snapshots as JSON
// documents named by iteration number, so a run can resume exactly where it
// left off (spec.md §4.7, §6).
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoCheckpoint is returned by Reader.Latest when a directory has no
// checkpoint files to load.
var ErrNoCheckpoint = errors.New("checkpoint: no checkpoint files found")

// Document is one checkpoint's contents: the start and goal pose keys, the
// best goal-reaching node found so far (empty if none), its cost under
// whatever metric the active cost model reports (stored under the field
// name given by CostKey rather than a fixed one), the best path as a
// sequence of pose keys, and the tree adjacency (child key -> parent key,
// root mapping to the empty string).
type Document struct {
	Start        string
	Goal         string
	BestGoalNode string
	CostKey      string
	Cost         float64
	BestPathRaw  []string
	Graph        map[string]string
}

var reservedKeys = map[string]bool{
	"start":          true,
	"goal":           true,
	"best_goal_node": true,
	"best_path_raw":  true,
	"graph":          true,
}

// MarshalJSON implements json.Marshaler, placing Cost under the document's
// own CostKey rather than a fixed field name.
func (d Document) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{
		"start":          d.Start,
		"goal":           d.Goal,
		"best_goal_node": d.BestGoalNode,
		"best_path_raw":  d.BestPathRaw,
		"graph":          d.Graph,
	}
	costKey := d.CostKey
	if costKey == "" {
		costKey = "cost"
	}
	m[costKey] = d.Cost
	return json.Marshal(m)
}

// UnmarshalJSON implements json.Unmarshaler, recovering whichever field
// name was used for the cost as CostKey.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("checkpoint: malformed document: %w", err)
	}
	if err := unmarshalField(raw, "start", &d.Start); err != nil {
		return err
	}
	if err := unmarshalField(raw, "goal", &d.Goal); err != nil {
		return err
	}
	if err := unmarshalField(raw, "best_goal_node", &d.BestGoalNode); err != nil {
		return err
	}
	if msg, ok := raw["best_path_raw"]; ok {
		if err := json.Unmarshal(msg, &d.BestPathRaw); err != nil {
			return fmt.Errorf("checkpoint: best_path_raw: %w", err)
		}
	}
	if msg, ok := raw["graph"]; ok {
		if err := json.Unmarshal(msg, &d.Graph); err != nil {
			return fmt.Errorf("checkpoint: graph: %w", err)
		}
	}
	for key, msg := range raw {
		if reservedKeys[key] {
			continue
		}
		d.CostKey = key
		if err := json.Unmarshal(msg, &d.Cost); err != nil {
			return fmt.Errorf("checkpoint: cost field %q: %w", key, err)
		}
		break
	}
	return nil
}

func unmarshalField(raw map[string]json.RawMessage, key string, dst *string) error {
	msg, ok := raw[key]
	if !ok {
		return fmt.Errorf("checkpoint: missing field %q", key)
	}
	if err := json.Unmarshal(msg, dst); err != nil {
		return fmt.Errorf("checkpoint: field %q: %w", key, err)
	}
	return nil
}
