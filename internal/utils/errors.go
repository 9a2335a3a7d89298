package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons. Controllers map these to status codes;
// the ceremony errors deliberately all surface as the same public
// message.
var (
	ErrUsernameTaken      = errors.New("username_taken")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrChallengeNotFound  = errors.New("challenge_not_found")
	ErrVerificationFailed = errors.New("verification_failed")

	ErrNoteNotFound   = errors.New("note_not_found")
	ErrMemberExists   = errors.New("member_exists")
	ErrMemberNotFound = errors.New("member_not_found")
)
