package errors

import "errors"

var (
	ErrPollMismatch  = errors.New("poll account mismatch")
	ErrPollNotActive = errors.New("poll is not active")
	ErrUnauthorized  = errors.New("only the poll creator can perform this action")
	ErrAlreadyVoted  = errors.New("you have already voted in this poll")

	// Record store failures. ErrAddressInUse is the generic create-if-absent
	// rejection; callers translate it into a domain kind where one applies.
	ErrAddressInUse                 = errors.New("account address already in use")
	ErrAccountNotFound              = errors.New("account not found")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator mismatch")
	ErrAccountDidNotDeserialize     = errors.New("account data could not be deserialized")
	ErrConstraintSeeds              = errors.New("supplied account address does not match derived address")

	ErrDescriptionTooLong   = errors.New("poll description exceeds maximum length")
	ErrCandidateNameTooLong = errors.New("candidate name exceeds maximum length")
	ErrArithmeticOverflow   = errors.New("counter overflow")
	ErrInvalidSigner        = errors.New("signer identity is required")
)
