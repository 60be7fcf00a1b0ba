package trade

import (
	"fmt"
)

// BasketLine is one requested change to a basket line
type BasketLine struct {
	VariantID uint64 `json:"product_info"`
	Quantity  int    `json:"quantity"`
}

// Validate checks the line in isolation
func (l BasketLine) Validate() error {
	if l.VariantID == 0 {
		return fmt.Errorf("product_info is required")
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("quantity must be a positive integer")
	}
	return nil
}

// LineOutcomeStatus is the result of one basket line in a batch
type LineOutcomeStatus string

const (
	LineCreated        LineOutcomeStatus = "created"
	LineDuplicate      LineOutcomeStatus = "duplicate"
	LineInvalid        LineOutcomeStatus = "invalid"
	LineUnknownVariant LineOutcomeStatus = "unknown_variant"
	// LineNotApplied marks entries after the first failure of a rolled back batch
	LineNotApplied     LineOutcomeStatus = "not_applied"
)

// LineOutcome reports what happened to one entry of an add batch
type LineOutcome struct {
	Index     int               `json:"index"`
	VariantID uint64            `json:"product_info"`
	Status    LineOutcomeStatus `json:"status"`
	Message   string            `json:"message,omitempty"`
}

// AddLinesResult is the result of an all-or-nothing add batch
type AddLinesResult struct {
	Created  int           `json:"created"`
	Outcomes []LineOutcome `json:"outcomes"`
}

// Failed reports whether the batch was rejected
func (r *AddLinesResult) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Status != LineCreated {
			return true
		}
	}
	return false
}

// FirstFailure returns the first outcome that is not Created
func (r *AddLinesResult) FirstFailure() *LineOutcome {
	for i := range r.Outcomes {
		if r.Outcomes[i].Status != LineCreated {
			return &r.Outcomes[i]
		}
	}
	return nil
}

// ValidateLines checks every entry and returns outcomes for the batch.
// ok is false when at least one entry is invalid.
func ValidateLines(lines []BasketLine) (outcomes []LineOutcome, ok bool) {
	outcomes = make([]LineOutcome, len(lines))
	ok = true
	for i, l := range lines {
		outcomes[i] = LineOutcome{Index: i, VariantID: l.VariantID, Status: LineCreated}
		if err := l.Validate(); err != nil {
			outcomes[i].Status = LineInvalid
			outcomes[i].Message = err.Error()
			ok = false
		}
	}
	if !ok {
		for i := range outcomes {
			if outcomes[i].Status == LineCreated {
				outcomes[i].Status = LineNotApplied
			}
		}
	}
	return outcomes, ok
}
