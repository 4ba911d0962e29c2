package conversation

import "github.com/chatweet/chatweet/types"

// Truncator decides which leading turns to drop once a conversation exceeds
// its token threshold.
//
// The zero value of Repeat and PreserveSystem reproduces the classic policy:
// drop the first DropCount turns exactly once, whatever their role.
type Truncator struct {
	// Threshold is the estimate above which the buffer is trimmed.
	Threshold int

	// DropCount is the number of leading turns removed per trim.
	DropCount int

	// Repeat keeps trimming until the estimate is at or below Threshold.
	Repeat bool

	// PreserveSystem never drops a system turn at the head of the buffer;
	// the trim starts right after it.
	PreserveSystem bool
}

// estimateFunc re-estimates a candidate buffer during repeated trimming.
type estimateFunc func(turns []types.Turn) (int, error)

// Apply returns the trimmed buffer and the number of turns dropped. tokens is
// the estimate of turns; estimate is only consulted when Repeat is set.
func (t Truncator) Apply(turns []types.Turn, tokens int, estimate estimateFunc) ([]types.Turn, int, error) {
	if tokens <= t.Threshold || t.DropCount <= 0 {
		return turns, 0, nil
	}

	dropped := 0
	for {
		next, n := t.trimOnce(turns)
		if n == 0 {
			return turns, dropped, nil
		}
		turns = next
		dropped += n

		if !t.Repeat {
			return turns, dropped, nil
		}

		var err error
		tokens, err = estimate(turns)
		if err != nil {
			return turns, dropped, err
		}
		if tokens <= t.Threshold {
			return turns, dropped, nil
		}
	}
}

// trimOnce removes up to DropCount turns from the head of turns.
func (t Truncator) trimOnce(turns []types.Turn) ([]types.Turn, int) {
	start := 0
	if t.PreserveSystem && len(turns) > 0 && turns[0].Role == types.RoleSystem {
		start = 1
	}

	end := start + t.DropCount
	if end > len(turns) {
		end = len(turns)
	}
	if end <= start {
		return turns, 0
	}

	out := make([]types.Turn, 0, len(turns)-(end-start))
	out = append(out, turns[:start]...)
	out = append(out, turns[end:]...)
	return out, end - start
}
