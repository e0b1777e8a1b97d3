package hil

import "time"

// Status is the validation verdict of one HIL batch.
type Status string

const (
	StatusValidated          Status = "validated"
	StatusPartiallyValidated Status = "partially_validated"
	StatusNotValidated       Status = "not_validated"
)

// Outcome is the pre-computed result of one hardware-in-the-loop test.
type Outcome struct {
	TestName   string    `json:"test_name"`
	Passed     bool      `json:"passed"`
	ErrorPct   float64   `json:"error_pct"`
	Confidence float64   `json:"confidence"` // [0, 100]
	Timestamp  time.Time `json:"timestamp"`
}

// Report summarizes a batch of outcomes.
type Report struct {
	Total             int     `json:"total"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	PassRatePct       float64 `json:"pass_rate_pct"`
	AverageConfidence float64 `json:"average_confidence"`
	AverageErrorPct   float64 `json:"average_error_pct"`
	MaxErrorPct       float64 `json:"max_error_pct"`
	Status            Status  `json:"validation_status"`
}

// Sample is one timestamped reading from either the hardware rig or the twin.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Pair couples a hardware sample with the nearest digital sample.
type Pair struct {
	Hardware Sample        `json:"hardware"`
	Digital  Sample        `json:"digital"`
	Skew     time.Duration `json:"skew"`
}
