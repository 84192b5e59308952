package model

import (
	"fmt"

	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
)

// Request defines a submit request, field names follow the judge web API
type Request struct {
	RequestID   string `json:"requestId,omitempty"`
	ProjectType string `json:"projectType"`
	TaskID      int    `json:"taskId"`
	Code        string `json:"code"`
}

// Response defines the submit response
type Response struct {
	RequestID    string            `json:"requestId,omitempty"`
	SubmissionID string            `json:"submissionId"`
	Status       submission.Status `json:"status"`
	Output       string            `json:"output"`
	TestsPassed  int               `json:"testsPassed"`
	TestsTotal   int               `json:"testsTotal"`
	AllPassed    bool              `json:"allPassed"`
	Results      []judge.Outcome   `json:"results,omitempty"`
	ErrorMsg     string            `json:"error,omitempty"`
}

// ErrorResponse defines the body returned on failure
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ConvertRequest converts the api request to a worker request
func ConvertRequest(r *Request) *worker.Request {
	return &worker.Request{
		RequestID: r.RequestID,
		Input: judge.Input{
			TaskGroup: r.ProjectType,
			TaskID:    r.TaskID,
			Source:    r.Code,
		},
	}
}

// ConvertResponse converts a successful worker response, results are included on demand
func ConvertResponse(r worker.Response, withResults bool) (Response, error) {
	if r.Error != nil {
		return Response{}, r.Error
	}
	if r.Submission == nil {
		return Response{}, fmt.Errorf("request %q finished without submission", r.RequestID)
	}
	s := r.Submission
	ret := Response{
		RequestID:    r.RequestID,
		SubmissionID: s.ID,
		Status:       s.Status,
		Output:       s.Output,
		TestsPassed:  s.TestsPassed,
		TestsTotal:   s.TestsTotal,
		AllPassed:    s.AllPassed(),
	}
	if withResults {
		ret.Results = r.Outcomes
	}
	return ret, nil
}
