package types

import "fmt"

// Status values carried by a Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the single response produced for every request.
//
// Count fields are pointers so that a zero count is still emitted while
// unset counts are omitted from the JSON entirely.
type Result struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	GroupsCloned *int   `json:"groupsCloned,omitempty"`
	TabsCloned   *int   `json:"tabsCloned,omitempty"`
	GroupsCount  *int   `json:"groupsCount,omitempty"`
	TabsCount    *int   `json:"tabsCount,omitempty"`
}

// ErrorResult builds an error Result with no counts.
func ErrorResult(format string, args ...interface{}) Result {
	return Result{
		Status: StatusError,
		Error:  fmt.Sprintf(format, args...),
	}
}

// ClonedResult builds the success Result of a replication run.
func ClonedResult(message string, groupsCloned, tabsCloned int) Result {
	return Result{
		Status:       StatusSuccess,
		Message:      message,
		GroupsCloned: &groupsCloned,
		TabsCloned:   &tabsCloned,
	}
}

// StoredResult builds the success Result of a snapshot buffered for later
// delivery.
func StoredResult(message string, groupsCount, tabsCount int) Result {
	return Result{
		Status:      StatusSuccess,
		Message:     message,
		GroupsCount: &groupsCount,
		TabsCount:   &tabsCount,
	}
}

// IsSuccess reports whether the result has a success status.
func (r Result) IsSuccess() bool {
	return r.Status == StatusSuccess
}
