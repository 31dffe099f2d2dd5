package services

import (
	stderrors "errors"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/repository"
)

// MsgSelfFriend is shown when a profile is offered as its own friend.
const MsgSelfFriend = "A monkey cannot befriend itself"

// translate maps repository errors onto AppErrors. a and b are the profiles
// the failing operation was about; b is ignored for single-profile calls.
func translate(err error, a, b int64) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	var dup *repository.DuplicateError
	switch {
	case stderrors.As(err, &dup):
		values := make(map[string]string, len(dup.Fields))
		for _, field := range dup.Fields {
			values[field] = ""
		}
		return errors.NewConflictError(values)
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NewNotFoundError("profile", a)
	case stderrors.Is(err, repository.ErrNotFriends):
		return errors.NewNotFriendsError(a, b)
	case stderrors.Is(err, repository.ErrSelfReference):
		return errors.NewValidationError("user", MsgSelfFriend)
	default:
		return errors.NewInternalError(err)
	}
}

func outcome(err *errors.AppError) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case err.Status >= 500:
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeRejected
	}
}
