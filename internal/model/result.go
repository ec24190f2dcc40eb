package model

// Stage names the system a bulk operation step talked to.
type Stage string

const (
	StageRecordStore    Stage = "record-store"
	StagePrimaryStore   Stage = "primary-store"
	StageSecondaryStore Stage = "secondary-store"
	StageFetch          Stage = "fetch"
)

// Outcome is the result of one step for one photo.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// BulkOperationResult records what happened to one photo at one stage.
// It is produced for the caller to render and is never persisted.
type BulkOperationResult struct {
	PhotoID string  `json:"photo_id"`
	Stage   Stage   `json:"stage"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Failed reports whether the step failed.
func (r BulkOperationResult) Failed() bool {
	return r.Outcome == OutcomeFailure
}

// Failures filters results down to failed steps.
func Failures(results []BulkOperationResult) []BulkOperationResult {
	var out []BulkOperationResult
	for _, r := range results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}
