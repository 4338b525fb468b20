// ABOUTME: Bounded recency window of outcome scores for one position
// ABOUTME: Derives visit, support, correctness and failure metrics

package results

import "slices"

// PositionRecord keeps the most recent outcome scores of a position.
// Positive scores are successes; negative scores are failures whose
// magnitude is their severity.
type PositionRecord struct {
	history  []float64
	capacity int
}

// NewPositionRecord creates an empty record holding at most capacity scores.
func NewPositionRecord(capacity int) *PositionRecord {
	if capacity < 1 {
		capacity = 1
	}
	return &PositionRecord{capacity: capacity}
}

// PushScore appends score, evicting the oldest entries over capacity.
func (r *PositionRecord) PushScore(score float64) {
	r.history = append(r.history, score)
	if over := len(r.history) - r.capacity; over > 0 {
		r.history = slices.Delete(r.history, 0, over)
	}
}

// Scores returns the window, oldest first.
func (r *PositionRecord) Scores() []float64 {
	return slices.Clone(r.history)
}

// Capacity returns the window size.
func (r *PositionRecord) Capacity() int {
	return r.capacity
}

// VisitScore is the filled fraction of the window.
func (r *PositionRecord) VisitScore() float64 {
	return min(float64(len(r.history))/float64(r.capacity), 1)
}

// Support is the fraction of entries that are failures.
func (r *PositionRecord) Support() float64 {
	if len(r.history) == 0 {
		return 0
	}
	failures := 0
	for _, s := range r.history {
		if s < 0 {
			failures++
		}
	}
	return float64(failures) / float64(len(r.history))
}

// CorrectPercentage is the fraction of entries that are not an immediate failure.
func (r *PositionRecord) CorrectPercentage() float64 {
	if len(r.history) == 0 {
		return 0
	}
	correct := 0
	for _, s := range r.history {
		if s != -1 {
			correct++
		}
	}
	return float64(correct) / float64(len(r.history))
}

// Score is low when failures are mild or rare and approaches 1 when every
// entry is a severity-one failure. Zero without failures.
func (r *PositionRecord) Score() float64 {
	var failures int
	var severity float64
	for _, s := range r.history {
		if s < 0 {
			failures++
			severity -= s
		}
	}
	if failures == 0 {
		return 0
	}
	mean := severity / float64(failures)
	return (1 / mean) * (float64(failures) / float64(len(r.history)))
}
