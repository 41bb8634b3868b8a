package main

import "fmt"

// SyntaxError is the recoverable signal raised when a primary expression
// cannot be parsed. It bubbles up to the declaration loop, which converts
// it into a synchronization step; it never escapes Parse.
type SyntaxError struct {
	Token   Token
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[Line %d, Col %d] %s", e.Token.Line, e.Token.Column, e.Message)
}

// InvalidOutputNameError rejects output base names that would escape the
// working directory or break the backend command line.
type InvalidOutputNameError struct {
	Name string
}

func (e *InvalidOutputNameError) Error() string {
	return fmt.Sprintf("invalid output name %q", e.Name)
}
