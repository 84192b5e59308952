package judge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInputMissing is returned when a submission lacks a required field
var ErrInputMissing = errors.New("missing required fields")

// Input is a single judging request at the service boundary
type Input struct {
	TaskGroup string `json:"projectType"`
	TaskID    int    `json:"taskId"`
	Source    string `json:"code"`
}

// Validate rejects input with an absent group, id or source
func (in Input) Validate() error {
	var missing []string
	if in.TaskGroup == "" {
		missing = append(missing, "projectType")
	}
	if in.TaskID == 0 {
		missing = append(missing, "taskId")
	}
	if in.Source == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInputMissing, strings.Join(missing, ", "))
	}
	return nil
}
