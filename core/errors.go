package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden caller identity not allowed for this transition
	ErrOperationForbidden ErrorCode = 100001
	// ErrReentrantCall operation re-entered before the outer call finished
	ErrReentrantCall ErrorCode = 100002

	// ErrPoolUninitialized no pool for the asset
	ErrPoolUninitialized ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrInsufficientPrincipal not enough unencumbered principal
	ErrInsufficientPrincipal ErrorCode = 100102
	// ErrSolvencyViolation would breach the pool loan-to-value limit
	ErrSolvencyViolation ErrorCode = 100103
	// ErrEncumbranceUnderflow decrease exceeds the tracked amount; a caller bug
	ErrEncumbranceUnderflow ErrorCode = 100104
	// ErrInvalidConfiguration missing routing target or malformed bps
	ErrInvalidConfiguration ErrorCode = 100105
	// ErrPositionNotFound no position record
	ErrPositionNotFound ErrorCode = 100106
	// ErrRetireNotAllowed position still carries principal, debt or encumbrance
	ErrRetireNotAllowed ErrorCode = 100107

	// ErrAgreementNotFound no agreement
	ErrAgreementNotFound ErrorCode = 100200
	// ErrAgreementClosed agreement already left the active state
	ErrAgreementClosed ErrorCode = 100201
	// ErrAgreementNotDue transition attempted before its window opened
	ErrAgreementNotDue ErrorCode = 100202
	// ErrGraceNotElapsed default attempted inside the grace period
	ErrGraceNotElapsed ErrorCode = 100203
	// ErrExerciseWindow exercise attempted outside the allowed window
	ErrExerciseWindow ErrorCode = 100204
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
