package codes

import (
	"strconv"

	"github.com/twitchtv/twirp"

	"tally/core"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"
)

// With with specified error
func With(err error, code int) error {
	twerr, ok := err.(twirp.Error)
	if !ok {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// Twirp maps an engine error onto a twirp error code so transports agree on
// semantics.
func Twirp(code core.ErrorCode) twirp.ErrorCode {
	switch code {
	case core.ErrOperationForbidden:
		return twirp.PermissionDenied
	case core.ErrReentrantCall:
		return twirp.Aborted
	case core.ErrPoolUninitialized, core.ErrPositionNotFound, core.ErrAgreementNotFound:
		return twirp.NotFound
	case core.ErrInvalidAmount, core.ErrInvalidConfiguration:
		return twirp.InvalidArgument
	case core.ErrInsufficientPrincipal, core.ErrSolvencyViolation, core.ErrRetireNotAllowed:
		return twirp.FailedPrecondition
	case core.ErrEncumbranceUnderflow:
		return twirp.Internal
	case core.ErrAgreementClosed, core.ErrAgreementNotDue, core.ErrGraceNotElapsed, core.ErrExerciseWindow:
		return twirp.FailedPrecondition
	default:
		return twirp.Unknown
	}
}

// HTTPStatus http status of an engine error
func HTTPStatus(code core.ErrorCode) int {
	return twirp.ServerHTTPStatusFromErrorCode(Twirp(code))
}
