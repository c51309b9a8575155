package parser

import "fmt"

// ParseError reports input the C grammar could not parse, or a top-level
// node that has no Declaration equivalent.
type ParseError struct {
	Pos     Position
	Node    string
	Snippet string
	Reason  string
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Reason)
	if e.Node != "" {
		msg += fmt.Sprintf(" (%s)", e.Node)
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" near %q", e.Snippet)
	}
	return msg
}
