package models

type StepType string

const (
	StepTransactionCreated   StepType = "transaction_created"
	StepDepositPaid          StepType = "deposit_paid"
	StepToolBorrowed         StepType = "tool_borrowed"
	StepToolReturned         StepType = "tool_returned"
	StepTransactionCompleted StepType = "transaction_completed"
)

// CanonicalSteps is the fixed total order every transaction walks through.
var CanonicalSteps = []StepType{
	StepTransactionCreated,
	StepDepositPaid,
	StepToolBorrowed,
	StepToolReturned,
	StepTransactionCompleted,
}

func (s StepType) Valid() bool {
	for _, c := range CanonicalSteps {
		if c == s {
			return true
		}
	}
	return false
}

// NextPendingStep folds the logged steps over CanonicalSteps and returns the
// first label not yet present. ok is false once all five are logged.
func NextPendingStep(logged []Step) (next StepType, ok bool) {
	seen := make(map[StepType]bool, len(logged))
	for _, s := range logged {
		seen[s.StepType] = true
	}
	for _, c := range CanonicalSteps {
		if !seen[c] {
			return c, true
		}
	}
	return "", false
}

// IsPrefix reports whether the logged step types form a prefix of the
// canonical order, i.e. nothing was completed ahead of its predecessor.
func IsPrefix(logged []Step) bool {
	seen := make(map[StepType]bool, len(logged))
	for _, s := range logged {
		seen[s.StepType] = true
	}
	n := len(seen)
	for i, c := range CanonicalSteps {
		if i >= n {
			break
		}
		if !seen[c] {
			return false
		}
	}
	return n <= len(CanonicalSteps)
}
