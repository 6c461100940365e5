package dialogue

// History is a bounded window over the most recent utterances of a
// conversation, stored as token-id slices.
type History struct {
	maxTurns int
	turns    [][]int
}

// NewHistory returns a history window keeping at most maxTurns utterances.
// maxTurns < 1 is treated as 1.
func NewHistory(maxTurns int) *History {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &History{maxTurns: maxTurns}
}

// Append adds an utterance, dropping the oldest when the window is full.
func (h *History) Append(utterance []int) {
	h.turns = append(h.turns, utterance)
	if len(h.turns) > h.maxTurns {
		h.turns = h.turns[len(h.turns)-h.maxTurns:]
	}
}

// Turns returns the current window, oldest first.
func (h *History) Turns() [][]int { return h.turns }

// Len returns the number of utterances in the window.
func (h *History) Len() int { return len(h.turns) }

// Reset clears the window.
func (h *History) Reset() { h.turns = nil }
