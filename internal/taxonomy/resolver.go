package taxonomy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/worms"
)

// maxChainDepth bounds the accepted-name walk. WoRMS chains are short in
// practice; anything deeper is treated as a data anomaly.
const maxChainDepth = 10

// resolution is the terminal state of an accepted-name walk.
type resolution struct {
	terminal *worms.AphiaRecord
	accepted bool
}

// resolveAccepted follows the valid-AphiaID back-reference of a candidate
// until an accepted taxon is reached or the chain ends. Cycles end the walk
// at the record where the cycle was first entered; dangling references and
// terminal non-accepted statuses keep the last reachable record. All of
// these are backbone data anomalies reported with accepted=false, never
// caller errors. Only transient lookup failures propagate.
func resolveAccepted(ctx context.Context, m Matcher, cand *worms.AphiaRecord, logger *slog.Logger) (resolution, error) {
	current := cand
	visited := map[int64]*worms.AphiaRecord{current.AphiaID: current}

	for depth := 0; depth < maxChainDepth; depth++ {
		switch current.Status {
		case worms.StatusAccepted:
			return resolution{terminal: current, accepted: true}, nil
		case worms.StatusUnaccepted, worms.StatusSynonym, worms.StatusAlternateRep:
			next := current.ValidAphiaID
			if next <= 0 || next == current.AphiaID {
				return resolution{terminal: current}, nil
			}
			if first, seen := visited[next]; seen {
				// The record where the cycle was first entered is the terminal.
				logger.Warn("cycle in accepted-name chain",
					logging.Int64("aphia_id", cand.AphiaID),
					logging.Int64("cycle_at", next))
				return resolution{terminal: first}, nil
			}
			rec, err := m.AphiaRecordByID(ctx, next)
			if errors.Is(err, worms.ErrNotFound) {
				// Dangling reference: keep the last reachable record.
				logger.Warn("accepted-name chain dangles",
					logging.Int64("aphia_id", current.AphiaID),
					logging.Int64("valid_aphia_id", next))
				return resolution{terminal: current}, nil
			}
			if err != nil {
				return resolution{}, err
			}
			visited[next] = rec
			current = rec
		default:
			// nomen dubium, taxon inquirendum, uncertain, interim statuses
			// and anything unrecognized: no accepted name reachable.
			return resolution{terminal: current}, nil
		}
	}

	logger.Warn("accepted-name chain exceeded depth limit",
		logging.Int64("aphia_id", cand.AphiaID),
		logging.Int("max_depth", maxChainDepth))
	return resolution{terminal: current}, nil
}

type marineState int

const (
	marineYes marineState = iota
	marineNo
	marineUnsure
)

// classifyMarine derives the habitat tri-state from the marine and brackish
// columns: definitively non-marine only when both are known false.
func classifyMarine(rec *worms.AphiaRecord) marineState {
	switch {
	case rec.IsMarine.True() || rec.IsBrackish.True():
		return marineYes
	case rec.IsMarine.False() && rec.IsBrackish.False():
		return marineNo
	default:
		return marineUnsure
	}
}
