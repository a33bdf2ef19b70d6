// Package library reconciles incoming game records (manual entry, Steam
// import, PSN import) into a single deduplicated per-user library. Source
// identifiers are stronger identity evidence than names, and a record can
// accumulate identifiers from several sources over time.
package library

import "errors"

// Candidate is an incoming game proposed for insertion or merge, not yet
// reconciled against the owner's library.
type Candidate struct {
	Name       string
	SteamAppID string
	PSNID      string

	// Platform labels contributed by the source, comma-separated when the
	// source reports several (e.g. "PS4,PS5").
	Platform string

	Studio      string
	ReleaseDate string
	Price       float64
	TimePlayed  int // minutes
}

var (
	// ErrNameRequired means the candidate carried no name; nothing was
	// looked up or written.
	ErrNameRequired = errors.New("library: candidate name is required")

	// ErrAmbiguousMatch means the name fallback matched more than one
	// existing record, so merging would risk picking the wrong variant.
	ErrAmbiguousMatch = errors.New("library: candidate name matches multiple records")
)

// Outcome classifies what AddOrMerge did with a candidate.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeMerged    Outcome = "merged"
	OutcomeDuplicate Outcome = "duplicate"
)
