// ABOUTME: Flat export and import of drill statistics
// ABOUTME: Keeps the positionMapWhite/positionMapBlack object shape

package results

import (
	"encoding/json"
	"fmt"

	"github.com/harper/repertoire/internal/fen"
)

// ExportedRecord is the serialised form of a PositionRecord.
type ExportedRecord struct {
	TestHistory   []float64 `json:"_testHistory" yaml:"_testHistory"`
	HistoryLength int       `json:"historyLength" yaml:"historyLength"`
}

// Export is the serialised form of a Summary.
type Export struct {
	White map[string]ExportedRecord `json:"positionMapWhite" yaml:"positionMapWhite"`
	Black map[string]ExportedRecord `json:"positionMapBlack" yaml:"positionMapBlack"`
}

// Export converts the summary into its flat object form.
func (s *Summary) Export() Export {
	return Export{
		White: exportRecords(s.white),
		Black: exportRecords(s.black),
	}
}

func exportRecords(records map[string]*PositionRecord) map[string]ExportedRecord {
	out := make(map[string]ExportedRecord, len(records))
	for key, r := range records {
		out[key] = ExportedRecord{TestHistory: r.Scores(), HistoryLength: r.capacity}
	}
	return out
}

// Load rebuilds a summary from an export. Records keep their stored window
// size; a missing size falls back to cfg.HistoryLength.
func Load(data Export, cfg Config) *Summary {
	s := New(cfg)
	loadRecords(s.white, data.White, cfg.HistoryLength)
	loadRecords(s.black, data.Black, cfg.HistoryLength)
	return s
}

func loadRecords(dst map[string]*PositionRecord, src map[string]ExportedRecord, fallback int) {
	for key, exp := range src {
		capacity := exp.HistoryLength
		if capacity < 1 {
			capacity = fallback
		}
		r := NewPositionRecord(capacity)
		for _, score := range exp.TestHistory {
			r.PushScore(score)
		}
		dst[fen.Key(key)] = r
	}
}

// MarshalJSON encodes the summary as its export object.
func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Export())
}

// FromJSON decodes exported statistics.
func FromJSON(data []byte, cfg Config) (*Summary, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return Load(exp, cfg), nil
}
