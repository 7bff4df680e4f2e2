package domain

import (
	"fmt"
	"strings"
)

// Outcome types a node can report.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Outcome is the classification a node returns from one invocation: a
// success/failure type plus a free-text detail. The interpreter converts it
// to a state string; node authors never touch the routing table directly.
type Outcome struct {
	Type   string
	Detail string
}

// Success creates a success outcome. An empty detail defaults to "done".
func Success(detail string) Outcome {
	if detail == "" {
		detail = "done"
	}
	return Outcome{Type: OutcomeSuccess, Detail: detail}
}

// Failure creates a failure outcome. An empty detail defaults to "error".
func Failure(detail string) Outcome {
	if detail == "" {
		detail = "error"
	}
	return Outcome{Type: OutcomeFailure, Detail: detail}
}

// IsSuccess reports whether the outcome is a success.
func (o Outcome) IsSuccess() bool { return o.Type == OutcomeSuccess }

// IsFailure reports whether the outcome is a failure.
func (o Outcome) IsFailure() bool { return o.Type == OutcomeFailure }

// StateString converts the outcome into the canonical routing key for the
// given node: "{node}::{type}::{detail}".
func (o Outcome) StateString(nodeName string) string {
	return MakeState(nodeName, o.Type, o.Detail)
}

// StateSeparator joins the segments of a state string.
const StateSeparator = "::"

// StateFormatError reports a state string that does not have the canonical
// three-segment shape.
type StateFormatError struct {
	Value string
}

func (e *StateFormatError) Error() string {
	return fmt.Sprintf("malformed state string %q (want 'node::outcome::detail')", e.Value)
}

// MakeState builds the canonical state string from its three components.
func MakeState(nodeName, outcomeType, detail string) string {
	return nodeName + StateSeparator + outcomeType + StateSeparator + detail
}

// ParseState splits a state string into (node, outcome type, detail).
// Strings without exactly three segments fail with a StateFormatError.
func ParseState(state string) (string, string, string, error) {
	parts := strings.Split(state, StateSeparator)
	if len(parts) != 3 {
		return "", "", "", &StateFormatError{Value: state}
	}
	return parts[0], parts[1], parts[2], nil
}

// MakeExit builds a legacy exit marker string: "exit::{color}::{name}".
func MakeExit(color, name string) string {
	return "exit" + StateSeparator + color + StateSeparator + name
}

// ParseExit splits a legacy exit marker into (color, name).
func ParseExit(exitState string) (string, string, error) {
	parts := strings.Split(exitState, StateSeparator)
	if len(parts) != 3 || parts[0] != "exit" {
		return "", "", &StateFormatError{Value: exitState}
	}
	return parts[1], parts[2], nil
}

// IsLegacyExitRef reports whether a transition target uses the legacy
// "exit::" marker convention rather than naming an exit node.
func IsLegacyExitRef(target string) bool {
	return strings.HasPrefix(target, "exit"+StateSeparator)
}

// ExitNodePrefix marks exit-flagged node names in the nested convention.
const ExitNodePrefix = "exit."

// IsExitNodeName reports whether a node name follows the nested exit
// convention ("exit.success.done").
func IsExitNodeName(name string) bool {
	return strings.HasPrefix(name, ExitNodePrefix)
}
