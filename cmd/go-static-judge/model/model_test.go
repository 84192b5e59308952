package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
)

func TestConvertRequest(t *testing.T) {
	r := ConvertRequest(&Request{RequestID: "q", ProjectType: "basics", TaskID: 3, Code: "x"})
	if r.RequestID != "q" || r.TaskGroup != "basics" || r.TaskID != 3 || r.Source != "x" {
		t.Errorf("unexpected %+v", r)
	}
}

func TestConvertResponse(t *testing.T) {
	rt := worker.Response{
		RequestID: "q",
		Submission: &submission.Submission{
			ID:          "id1",
			Status:      submission.StatusFailed,
			Output:      "out",
			TestsPassed: 1,
			TestsTotal:  2,
		},
		Outcomes: []judge.Outcome{{Description: "a", Passed: true}, {Description: "b"}},
	}
	res, err := ConvertResponse(rt, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.SubmissionID != "id1" || res.AllPassed || res.TestsTotal != 2 || res.Results != nil {
		t.Errorf("unexpected %+v", res)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	if m["status"] != "FAILED" || m["submissionId"] != "id1" {
		t.Errorf("unexpected json %s", data)
	}

	res, _ = ConvertResponse(rt, true)
	if len(res.Results) != 2 {
		t.Errorf("results not included: %+v", res)
	}

	if _, err := ConvertResponse(worker.Response{Error: errors.New("boom")}, false); err == nil {
		t.Error("expected error")
	}
	if _, err := ConvertResponse(worker.Response{}, false); err == nil {
		t.Error("expected error without submission")
	}
}
