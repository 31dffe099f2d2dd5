package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/vytor/monkeyapp/internal/models"
)

var (
	// ErrNotFound is returned when a referenced profile does not exist.
	ErrNotFound = errors.New("profile not found")
	// ErrNotFriends is returned when an operation needs an existing friendship.
	ErrNotFriends = errors.New("profiles are not friends")
	// ErrSelfReference is returned when a profile would befriend itself.
	ErrSelfReference = errors.New("profile cannot reference itself")
)

// DuplicateError reports a unique-constraint violation. Fields lists every
// unique field whose value another profile already holds.
type DuplicateError struct {
	Fields []string
	Err    error
}

func (e *DuplicateError) Error() string {
	return "duplicate " + strings.Join(e.Fields, ", ") + ": " + e.Err.Error()
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context, order models.ProfileOrder) ([]models.ProfileListing, error)
	Create(ctx context.Context, fields models.ProfileFields) (*models.Profile, error)
	Update(ctx context.Context, id int64, fields models.ProfileFields) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// FriendshipRepository maintains the symmetric friendship relation and the
// directional best-friend reference. Every method that writes runs in a
// single transaction.
type FriendshipRepository interface {
	Friends(ctx context.Context, id int64) ([]models.Profile, error)
	NonFriends(ctx context.Context, id int64) ([]models.Profile, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	Add(ctx context.Context, a, b int64) error
	Remove(ctx context.Context, a, b int64) error
	SetBestFriend(ctx context.Context, id int64, bestFriendID *int64) error
}
