package taxonomy

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ymgan/obis-qc/internal/logging"
	"github.com/ymgan/obis-qc/internal/record"
	"github.com/ymgan/obis-qc/internal/worms"
)

// Input fields consumed by this stage.
const (
	FieldScientificName   = "scientificName"
	FieldScientificNameID = "scientificNameID"
)

// Interpreted keys produced by this stage.
const (
	KeyAphia      = "aphia"
	KeyUnaccepted = "unaccepted"
	KeyMarine     = "marine"
)

const defaultWorkers = 4

// Checker resolves occurrence records against the taxonomic backbone and
// annotates them with quality flags and interpreted values.
type Checker struct {
	matcher    Matcher
	normalizer NameNormalizer
	logger     *slog.Logger
	workers    int
}

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWorkers bounds the number of records resolved concurrently.
func WithWorkers(workers int) CheckerOption {
	return func(c *Checker) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// WithNormalizer replaces the annotation heuristics.
func WithNormalizer(normalizer NameNormalizer) CheckerOption {
	return func(c *Checker) {
		if normalizer != nil {
			c.normalizer = normalizer
		}
	}
}

// NewChecker builds a checker backed by the given matching service.
func NewChecker(matcher Matcher, opts ...CheckerOption) *Checker {
	checker := &Checker{
		matcher:    matcher,
		normalizer: NewStandardNormalizer(),
		logger:     logging.NewNop(),
		workers:    defaultWorkers,
	}
	for _, opt := range opts {
		opt(checker)
	}
	return checker
}

// Check runs the taxonomy stage over records with a default checker.
func Check(ctx context.Context, matcher Matcher, records []*record.Record) error {
	return NewChecker(matcher).Check(ctx, records)
}

// Check resolves each record independently and mutates it in place. Lookups
// are deduplicated across the batch. Records already evaluated by an earlier
// pass are skipped, which makes repeated invocations idempotent. A transient
// matching-service failure aborts the batch with worms.ErrUnavailable;
// records resolved before the failure keep their results and the failing
// record is left untouched.
func (c *Checker) Check(ctx context.Context, records []*record.Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := newBatchMatcher(c.matcher)
	logger := logging.NewComponentLogger(c.logger, "taxonomy").
		With(logging.String("batch_id", uuid.NewString()))
	logger.Debug("checking batch", logging.Int("records", len(records)))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(c.workers)

	for _, rec := range records {
		if rec == nil || rec.Seen(FieldScientificName) || rec.Seen(FieldScientificNameID) {
			continue
		}
		group.Go(func() error {
			out, err := c.evaluate(ctx, batch, logger, rec)
			if err != nil {
				return err
			}
			// Mutations are committed only after the record fully resolved.
			out.apply(rec)
			return nil
		})
	}

	return group.Wait()
}

// outcome stages every mutation for one record so a mid-resolution failure
// leaves the record untouched.
type outcome struct {
	namePresent bool
	idPresent   bool
	idInvalid   bool
	flags       []record.Flag
	aphia       int64
	unaccepted  int64
	marine      *bool
	dropped     bool
}

func (o *outcome) addFlag(flag record.Flag) {
	o.flags = append(o.flags, flag)
}

func (o *outcome) apply(rec *record.Record) {
	if o.namePresent {
		rec.MarkPresent(FieldScientificName)
	} else {
		rec.MarkMissing(FieldScientificName)
	}
	if o.idPresent {
		rec.MarkPresent(FieldScientificNameID)
	} else {
		rec.MarkMissing(FieldScientificNameID)
	}
	if o.idInvalid {
		rec.MarkInvalid(FieldScientificNameID)
	}
	for _, flag := range o.flags {
		rec.AddFlag(flag)
	}
	if o.aphia > 0 {
		rec.SetInterpreted(KeyAphia, o.aphia)
	}
	if o.unaccepted > 0 {
		rec.SetInterpreted(KeyUnaccepted, o.unaccepted)
	}
	if o.marine != nil {
		rec.SetInterpreted(KeyMarine, *o.marine)
	}
	if o.dropped {
		rec.Drop()
	}
}

// evaluate runs the full decision procedure for one record: parse the
// identifier, reconcile id and name candidates, resolve the accepted-name
// chain, and classify marine-ness. It performs no record mutation.
func (c *Checker) evaluate(ctx context.Context, m Matcher, logger *slog.Logger, rec *record.Record) (*outcome, error) {
	out := &outcome{}
	name := rec.Get(FieldScientificName)
	idRaw := rec.Get(FieldScientificNameID)
	out.namePresent = name != ""
	out.idPresent = idRaw != ""

	// Identifier branch: a parsed id that the backbone knows is always
	// authoritative; a malformed or unknown id marks the field invalid and
	// leaves the name as the only fallback.
	var idRec *worms.AphiaRecord
	if out.idPresent {
		aphiaID, err := ParseLSID(idRaw)
		if err != nil {
			logger.Debug("scientificNameID rejected",
				logging.String("value", idRaw),
				logging.Error(err))
			out.idInvalid = true
		} else {
			idRec, err = m.AphiaRecordByID(ctx, aphiaID)
			switch {
			case errors.Is(err, worms.ErrNotFound):
				logger.Debug("aphia id unknown to backbone", logging.Int64("aphia_id", aphiaID))
				out.idInvalid = true
				idRec = nil
			case err != nil:
				return nil, err
			}
		}
	}

	chosen := idRec
	var annotationFlag record.Flag

	if chosen == nil && out.namePresent {
		annotation := c.normalizer.Classify(name)
		switch annotation.Kind {
		case AnnotationNone:
			cand, ambiguous, err := c.matchClean(ctx, m, logger, rec, name, &annotationFlag)
			if err != nil {
				return nil, err
			}
			if ambiguous {
				out.addFlag(record.FlagNoMatch)
				out.dropped = true
				return out, nil
			}
			chosen = cand
		case AnnotationPlaceholder:
			out.addFlag(record.FlagAnnotationUnresolvable)
			return out, nil
		default:
			cand, flag, err := c.resolveAnnotated(ctx, m, logger, rec, annotation)
			if err != nil {
				return nil, err
			}
			if cand == nil && flag != "" {
				out.addFlag(flag)
				if flag == record.FlagAnnotationRejectAmbiguous {
					out.dropped = true
				}
				return out, nil
			}
			chosen = cand
			annotationFlag = flag
		}
	}

	if chosen == nil {
		if out.namePresent || out.idPresent {
			out.addFlag(record.FlagNoMatch)
			out.dropped = true
		}
		return out, nil
	}
	if annotationFlag != "" {
		out.addFlag(annotationFlag)
	}

	res, err := resolveAccepted(ctx, m, chosen, logger)
	if err != nil {
		return nil, err
	}
	terminal := res.terminal
	out.aphia = terminal.AphiaID
	if res.accepted && terminal.AphiaID != chosen.AphiaID {
		out.unaccepted = chosen.AphiaID
	}
	if !res.accepted {
		out.addFlag(record.FlagNoAcceptedName)
	}

	switch classifyMarine(terminal) {
	case marineNo:
		out.addFlag(record.FlagNotMarine)
		marine := false
		out.marine = &marine
		out.dropped = true
	case marineUnsure:
		out.addFlag(record.FlagMarineUnsure)
	case marineYes:
		marine := true
		out.marine = &marine
	}

	logger.Debug("record resolved",
		logging.String("scientific_name", name),
		logging.Int64("aphia", out.aphia),
		logging.Bool("accepted", res.accepted),
		logging.Bool("dropped", out.dropped))
	return out, nil
}

// matchClean handles a name without annotation: exactly one exact-quality
// candidate is authoritative; several exact candidates go through a
// lineage-aware disambiguation pass; with no exact candidate the best
// non-contradicting fuzzy match is kept but flagged for human review.
func (c *Checker) matchClean(ctx context.Context, m Matcher, logger *slog.Logger, rec *record.Record, name string, reviewFlag *record.Flag) (*worms.AphiaRecord, bool, error) {
	matches, err := m.AphiaRecordsByMatchNames(ctx, c.normalizer.Canonical(name))
	if err != nil {
		return nil, false, err
	}
	declared := lineageFromRecord(rec)

	exacts := exactCandidates(matches)
	switch {
	case len(exacts) == 1:
		return &exacts[0], false, nil
	case len(exacts) > 1:
		narrowed := disambiguate(exacts, declared)
		if len(narrowed) == 1 {
			logger.Debug("ambiguous name disambiguated by lineage",
				logging.String("scientific_name", name),
				logging.Int64("aphia_id", narrowed[0].AphiaID))
			return &narrowed[0], false, nil
		}
		logger.Debug("ambiguous name match",
			logging.String("scientific_name", name),
			logging.Int("exact_candidates", len(exacts)))
		return nil, true, nil
	}

	fuzzies := disambiguate(fuzzyCandidates(matches), declared)
	if len(fuzzies) > 0 {
		*reviewFlag = record.FlagAnnotationResolvableHuman
		return &fuzzies[0], false, nil
	}
	return nil, false, nil
}

// resolveAnnotated attempts to salvage an annotated name. A nil candidate
// with an empty flag falls through to the no-match path; a nil candidate
// with a flag is a terminal annotation outcome.
func (c *Checker) resolveAnnotated(ctx context.Context, m Matcher, logger *slog.Logger, rec *record.Record, annotation Annotation) (*worms.AphiaRecord, record.Flag, error) {
	declared := lineageFromRecord(rec)
	stripped := strings.TrimSpace(annotation.Stripped)

	switch annotation.Kind {
	case AnnotationNonCurrent:
		// A non-current code over an open nomenclature qualifier leaves no
		// recoverable taxon: the species-level intent is gone.
		if annotation.OpenNomenclature || stripped == "" {
			return nil, record.FlagAnnotationRejectAmbiguous, nil
		}
		cand, err := c.singleExact(ctx, m, stripped, declared)
		if err != nil {
			return nil, "", err
		}
		if cand == nil {
			return nil, record.FlagAnnotationRejectAmbiguous, nil
		}
		return cand, record.FlagAnnotationResolvableLoss, nil

	case AnnotationBracketed, AnnotationOpenNomenclature:
		if stripped == "" {
			return nil, record.FlagAnnotationUnresolvable, nil
		}
		matches, err := m.AphiaRecordsByMatchNames(ctx, c.normalizer.Canonical(stripped))
		if err != nil {
			return nil, "", err
		}
		narrowed := disambiguate(matches, declared)
		switch {
		case len(narrowed) == 1:
			return &narrowed[0], record.FlagAnnotationResolvableLoss, nil
		case len(narrowed) > 1:
			exacts := exactCandidates(narrowed)
			if len(exacts) == 1 {
				return &exacts[0], record.FlagAnnotationResolvableLoss, nil
			}
			return nil, record.FlagAnnotationRejectAmbiguous, nil
		default:
			return nil, "", nil
		}

	case AnnotationAuthorship:
		matches, err := m.AphiaRecordsByMatchNames(ctx, c.normalizer.Canonical(stripped))
		if err != nil {
			return nil, "", err
		}
		exacts := exactCandidates(matches)
		if len(exacts) == 0 {
			return nil, "", nil
		}
		narrowed := disambiguate(exacts, declared)
		if len(narrowed) != 1 {
			// Either every candidate contradicts the declared lineage or
			// several survive: unsafe to pick one.
			return nil, record.FlagAnnotationRejectAmbiguous, nil
		}
		logger.Debug("authorship annotation resolved",
			logging.String("stripped", stripped),
			logging.Int64("aphia_id", narrowed[0].AphiaID))
		return &narrowed[0], record.FlagAnnotationResolvable, nil
	}

	return nil, "", nil
}

// singleExact matches a stripped name and returns a candidate only when
// exactly one exact-quality, lineage-consistent match exists.
func (c *Checker) singleExact(ctx context.Context, m Matcher, name string, declared lineage) (*worms.AphiaRecord, error) {
	matches, err := m.AphiaRecordsByMatchNames(ctx, c.normalizer.Canonical(name))
	if err != nil {
		return nil, err
	}
	narrowed := disambiguate(exactCandidates(matches), declared)
	if len(narrowed) != 1 {
		return nil, nil
	}
	return &narrowed[0], nil
}
