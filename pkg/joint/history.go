package joint

import (
	"encoding/json"
	"slices"
)

// Kinds of history entries.
const (
	EntryDeclare   = "declare"
	EntryDerive    = "derive"
	EntryObserve   = "observe"
	EntryCondition = "condition"
)

// History records every state change of a System in order.
type History struct {
	SystemID string  `json:"system_id"`
	Entries  []Entry `json:"entries"`
}

// Entry describes one state change. Probability is the declared probability
// for declarations and the marginal immediately before the change otherwise.
type Entry struct {
	Seq         int      `json:"seq"`
	Kind        string   `json:"kind"`
	Variable    string   `json:"variable"`
	Expr        string   `json:"expr,omitempty"`
	Inputs      []string `json:"inputs,omitempty"`
	Probability float64  `json:"probability"`
	Outcome     *bool    `json:"outcome,omitempty"`
}

// Observations returns the observe and condition entries.
func (h History) Observations() []Entry {
	out := make([]Entry, 0, len(h.Entries))
	for _, entry := range h.Entries {
		if entry.Kind == EntryObserve || entry.Kind == EntryCondition {
			out = append(out, entry)
		}
	}
	return out
}

// ToJSON serialises the history for logging or transport helpers.
func (h History) ToJSON() ([]byte, error) {
	type alias History
	return json.Marshal(alias(h))
}

// HistoryFromJSON deserialises a payload previously produced by ToJSON.
func HistoryFromJSON(payload []byte) (History, error) {
	type alias History
	var history alias
	if err := json.Unmarshal(payload, &history); err != nil {
		return History{}, err
	}
	return History(history), nil
}

func (h History) clone() History {
	out := History{SystemID: h.SystemID, Entries: make([]Entry, len(h.Entries))}
	for i, entry := range h.Entries {
		entry.Inputs = slices.Clone(entry.Inputs)
		if entry.Outcome != nil {
			outcome := *entry.Outcome
			entry.Outcome = &outcome
		}
		out.Entries[i] = entry
	}
	return out
}

// History returns a copy of the recorded state changes.
func (s *System) History() History {
	return s.history.clone()
}

func (s *System) record(entry Entry) {
	entry.Seq = len(s.history.Entries) + 1
	s.history.Entries = append(s.history.Entries, entry)
}
