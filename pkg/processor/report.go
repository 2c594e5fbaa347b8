package processor

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeSkipped
	outcomeFailed
)

// ZoneReport is the outcome of processing one zone. A zone whose report has
// failures still counts as processed; partial application is a valid end state.
type ZoneReport struct {
	Domain string
	ZoneID string

	CAACreated int
	CAASkipped int
	CAAFailed  int

	// AppliedSteps and FailedSteps list setting names in the order they ran.
	AppliedSteps []string
	FailedSteps  []string
}

// CAATotal returns the number of CAA records attempted.
func (r ZoneReport) CAATotal() int {
	return r.CAACreated + r.CAASkipped + r.CAAFailed
}

// Clean reports whether every CAA record and setting was applied or skipped.
func (r ZoneReport) Clean() bool {
	return r.CAAFailed == 0 && len(r.FailedSteps) == 0
}

func (r *ZoneReport) record(o outcome) {
	switch o {
	case outcomeCreated:
		r.CAACreated++
	case outcomeSkipped:
		r.CAASkipped++
	case outcomeFailed:
		r.CAAFailed++
	}
}
