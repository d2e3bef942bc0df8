package model

// TestConfiguration holds timing and marking options for one test session.
// It is created once at the configuration step and is immutable while the
// test is being taken.
type TestConfiguration struct {
	IsTimedTest            bool    `json:"is_timed_test"`
	DurationSeconds        int     `json:"duration_seconds"`
	NegativeMarkingEnabled bool    `json:"negative_marking_enabled"`
	NegativeMarkPerWrong   float64 `json:"negative_mark_per_wrong"`
}

// ConfigureRequest is the payload for the configuration step. Duration is
// capped at 12 hours. The negative mark defaults to 0.25 when marking is
// enabled and no value is given.
type ConfigureRequest struct {
	IsTimedTest            bool     `json:"is_timed_test"`
	DurationSeconds        int      `json:"duration_seconds" binding:"omitempty,min=1,max=43200"`
	NegativeMarkingEnabled bool     `json:"negative_marking_enabled"`
	NegativeMarkPerWrong   *float64 `json:"negative_mark_per_wrong" binding:"omitempty,gt=0,lte=10"`
}

// DefaultNegativeMark is applied when negative marking is enabled without an
// explicit per-wrong penalty.
const DefaultNegativeMark = 0.25
