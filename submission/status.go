package submission

import (
	"fmt"
	"strconv"
)

// Status defines the lifecycle status of a submission
type Status int

// Defines submission status
const (
	StatusPending Status = iota
	StatusRunning

	// terminal
	StatusPassed
	StatusFailed
)

var statusToString = []string{
	"PENDING",
	"RUNNING",
	"PASSED",
	"FAILED",
}

// stringToStatus map string to corresponding Status
var stringToStatus = make(map[string]Status)

func init() {
	for i, v := range statusToString {
		stringToStatus[v] = Status(i)
	}
}

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return "INVALID"
	}
	return statusToString[si]
}

// Terminal reports whether no further transition is allowed
func (s Status) Terminal() bool {
	return s == StatusPassed || s == StatusFailed
}

// ParseStatus converts string to Status
func ParseStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid status: %q", s)
	}
	return v, nil
}

// MarshalJSON encodes status as string
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// UnmarshalJSON decodes status from string
func (s *Status) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	v, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
