package models

// ProcessOutcome distinguishes how far a single ticker event made it
// through the pipeline. Operators rely on the partial-success cases, so
// this is never collapsed into a boolean.
type ProcessOutcome int

const (
	// OutcomeSuccess: fetch, price insert and metadata upsert all succeeded.
	OutcomeSuccess ProcessOutcome = iota
	// OutcomePriceOnly: price row written, metadata upsert failed.
	OutcomePriceOnly
	// OutcomeMetadataOnly: metadata written, price insert failed.
	OutcomeMetadataOnly
	// OutcomeWritesFailed: fetch succeeded but both writes failed.
	OutcomeWritesFailed
	// OutcomeFetchFailed: provider call failed, no writes attempted.
	OutcomeFetchFailed
	// OutcomeSkipped: event recognized but not actionable (delete action).
	OutcomeSkipped
)

func (o ProcessOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePriceOnly:
		return "partial_price_only"
	case OutcomeMetadataOnly:
		return "partial_metadata_only"
	case OutcomeWritesFailed:
		return "writes_failed"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Partial reports whether exactly one of the two persistence steps failed.
func (o ProcessOutcome) Partial() bool {
	return o == OutcomePriceOnly || o == OutcomeMetadataOnly
}
