package types

// Hit is one motif match in one promoter sequence. A negative Position marks
// a reverse-strand match using the matcher's strand-relative coordinates.
type Hit struct {
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// AdjustPosition maps a strand-relative hit position onto the promoter axis.
func AdjustPosition(pos, promoterLength int) int {
	if pos < 0 {
		return promoterLength + pos + 1
	}
	return pos
}

// Observation is the hit recorded for one sequence inside one window.
type Observation struct {
	Position    int     `json:"adjusted_position"`
	RawPosition int     `json:"position"`
	Score       float64 `json:"score"`
}

// SequenceObservation pairs an Observation with the sequence it came from.
type SequenceObservation struct {
	SequenceID string `json:"sequence_id"`
	Observation
}

// WindowResult is an accepted window. ID is the 1-based acceptance order.
type WindowResult struct {
	ID           int                   `json:"window_id"`
	Start        int                   `json:"start"`
	End          int                   `json:"end"`
	Score        float64               `json:"window_score"`
	Observations []SequenceObservation `json:"details"`
}

// Observation returns the observation recorded for id, if any.
func (w WindowResult) Observation(id string) (Observation, bool) {
	for _, o := range w.Observations {
		if o.SequenceID == id {
			return o.Observation, true
		}
	}
	return Observation{}, false
}
