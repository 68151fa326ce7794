package taxonomy

import (
	"context"

	"github.com/ymgan/obis-qc/internal/worms"
)

// Matcher is the call boundary to the taxonomic matching service. The engine
// issues at most one lookup per distinct id or name within a batch and treats
// returned candidates as immutable snapshots.
type Matcher interface {
	// AphiaRecordByID resolves a taxon key. Unknown keys yield
	// worms.ErrNotFound; transient failures yield worms.ErrUnavailable.
	AphiaRecordByID(ctx context.Context, aphiaID int64) (*worms.AphiaRecord, error)

	// AphiaRecordsByMatchNames returns ranked candidates for a name, best
	// first. An empty result means no match and is not an error.
	AphiaRecordsByMatchNames(ctx context.Context, name string) ([]worms.AphiaRecord, error)
}

var _ Matcher = (*worms.Client)(nil)
