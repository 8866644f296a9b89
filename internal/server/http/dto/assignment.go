package dto

// StartAssignmentRequest is the optional body of POST /assignment/start.
type StartAssignmentRequest struct {
	IntervalMs int64 `json:"intervalMs,omitempty"`
}
