package model

// OutcomeKind classifies the result of a single course fetch.
type OutcomeKind int

const (
	// OutcomeSuccess means the detail payload was fetched.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeSoftRateLimited means the server answered 429.
	OutcomeSoftRateLimited

	// OutcomeHardBlocked means the server answered 403.
	OutcomeHardBlocked

	// OutcomeOtherFailure covers every other fetch error.
	OutcomeOtherFailure

	// OutcomeSkipped means no request was issued because the session was
	// already aborted or the run was cancelled.
	OutcomeSkipped
)

// String returns a short lowercase label for logs and reports.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeSoftRateLimited:
		return "rate_limited"
	case OutcomeHardBlocked:
		return "hard_blocked"
	case OutcomeOtherFailure:
		return "other_failure"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome pairs a course with the classified result of fetching it.
// Course is set only for OutcomeSuccess; Message only for failures.
type Outcome struct {
	Ref     CourseRef
	Kind    OutcomeKind
	Course  *RawCourse
	Message string
}

// Succeeded reports whether the outcome carries a course payload.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess && o.Course != nil
}
