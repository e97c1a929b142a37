package codec

import "fmt"

// DisallowedSpecialTokenError is returned by Encode when a special token
// listed in the disallowed set occurs literally in the input text.
//
// This is a caller-correctable input error: either remove the substring from
// the text, move the token to the allowed set, or drop it from the disallowed
// set to have it encoded as ordinary text.
type DisallowedSpecialTokenError struct {
	Token  string // the offending special token, verbatim
	Offset int    // byte offset of its first occurrence in the input
}

func (e *DisallowedSpecialTokenError) Error() string {
	return fmt.Sprintf("text contains disallowed special token %q at byte offset %d", e.Token, e.Offset)
}

// UnknownTokenError is returned by Decode when a token id belongs to neither
// the ordinary rank space nor the special token space.
type UnknownTokenError struct {
	Token Token
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("unknown token id %d", e.Token)
}

// InvariantViolationError reports that the merge engine produced a byte span
// with no rank. This cannot happen with a validated vocabulary (every single
// byte present, merges only ever produce spans that were looked up
// successfully), so it indicates a malformed vocabulary that escaped load-time
// validation, not bad input.
type InvariantViolationError struct {
	Piece []byte
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("vocabulary invariant violated: byte sequence %q has no rank", e.Piece)
}
