package onboarding

// Step is one state of the seller onboarding wizard
type Step string

const (
	StepStoreBasic      Step = "store-basic"
	StepBusinessDetails Step = "business-details"
	StepAddress         Step = "address"
	StepDocuments       Step = "documents"
	StepReview          Step = "review"
	// StepComplete is the terminal state after a successful final submission
	StepComplete Step = "complete"
)

// Steps is the fixed wizard order. Transitions only ever move to the next
// entry on a successful submission, or to any earlier entry on user-driven
// back navigation.
var Steps = []Step{StepStoreBasic, StepBusinessDetails, StepAddress, StepDocuments, StepReview}

// stepEndpoints maps each step to its dedicated submission endpoint. No
// endpoint is ever reused across steps.
var stepEndpoints = map[Step]string{
	StepStoreBasic:      "/seller/onboarding/store-basic",
	StepBusinessDetails: "/seller/onboarding/business-details",
	StepAddress:         "/seller/onboarding/address",
	StepDocuments:       "/seller/onboarding/mark-documents-complete",
	StepReview:          "/seller/onboarding/submit",
}

// ParseStep maps a server-reported step name onto a Step. The second return
// is false for unknown names.
func ParseStep(name string) (Step, bool) {
	switch Step(name) {
	case StepStoreBasic, StepBusinessDetails, StepAddress, StepDocuments, StepReview, StepComplete:
		return Step(name), true
	}
	return "", false
}

// Index returns the zero-based position of s in the wizard, or -1 for
// StepComplete and unknown steps.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step that follows s in the fixed order. The step after
// review is complete; complete is absorbing.
func (s Step) Next() Step {
	idx := s.Index()
	if idx < 0 || idx == len(Steps)-1 {
		return StepComplete
	}
	return Steps[idx+1]
}

// Progress returns the wizard progress percentage at step s.
func (s Step) Progress() float64 {
	if s == StepComplete {
		return 100
	}
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(Steps)) * 100
}

// Before reports whether s comes strictly earlier in the wizard than other.
func (s Step) Before(other Step) bool {
	if s == StepComplete {
		return false
	}
	if other == StepComplete {
		return true
	}
	return s.Index() < other.Index()
}
