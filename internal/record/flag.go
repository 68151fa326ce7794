package record

import "sort"

// Flag is a quality flag emitted by a QC stage. The set of flags is closed;
// downstream consumers rely on these exact values for provenance.
type Flag string

const (
	FlagNoMatch        Flag = "NO_MATCH"
	FlagNotMarine      Flag = "NOT_MARINE"
	FlagMarineUnsure   Flag = "MARINE_UNSURE"
	FlagNoAcceptedName Flag = "NO_ACCEPTED_NAME"

	FlagAnnotationUnresolvable    Flag = "WORMS_ANNOTATION_UNRESOLVABLE"
	FlagAnnotationResolvable      Flag = "WORMS_ANNOTATION_RESOLVABLE"
	FlagAnnotationResolvableLoss  Flag = "WORMS_ANNOTATION_RESOLVABLE_LOSS"
	FlagAnnotationResolvableHuman Flag = "WORMS_ANNOTATION_RESOLVABLE_HUMAN"
	FlagAnnotationRejectAmbiguous Flag = "WORMS_ANNOTATION_REJECT_AMBIGUOUS"
)

// Valid reports whether the flag belongs to the closed enumeration.
func (f Flag) Valid() bool {
	switch f {
	case FlagNoMatch, FlagNotMarine, FlagMarineUnsure, FlagNoAcceptedName,
		FlagAnnotationUnresolvable, FlagAnnotationResolvable,
		FlagAnnotationResolvableLoss, FlagAnnotationResolvableHuman,
		FlagAnnotationRejectAmbiguous:
		return true
	}
	return false
}

func (f Flag) String() string { return string(f) }

// FlagSet is an unordered set of quality flags. Insertion order is irrelevant
// and duplicates are impossible.
type FlagSet map[Flag]struct{}

func (s FlagSet) Add(flag Flag) {
	s[flag] = struct{}{}
}

func (s FlagSet) Has(flag Flag) bool {
	_, ok := s[flag]
	return ok
}

func (s FlagSet) Len() int { return len(s) }

// List returns the flags sorted lexicographically for deterministic output.
func (s FlagSet) List() []Flag {
	flags := make([]Flag, 0, len(s))
	for flag := range s {
		flags = append(flags, flag)
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i] < flags[j] })
	return flags
}
