package services

import (
	"context"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/models"
	"github.com/vytor/monkeyapp/internal/repository"
)

// GraphService manages friendships and best-friend designations between
// profiles.
type GraphService interface {
	// AddFriend makes a and b mutual friends. Adding an existing friendship
	// is a no-op.
	AddFriend(ctx context.Context, a, b int64) error
	// RemoveFriend ends the friendship between a and b and clears any
	// best-friend reference either one held to the other.
	RemoveFriend(ctx context.Context, a, b int64) error
	// MakeBestFriend sets id's best friend to target, or clears it when
	// target is nil. target must already be a friend of id.
	MakeBestFriend(ctx context.Context, id int64, target *int64) error
	// AreFriends reports whether a and b are currently friends.
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	Friends(ctx context.Context, id int64) ([]models.Profile, error)
	NonFriends(ctx context.Context, id int64) ([]models.Profile, error)
}

type graphService struct {
	friendRepo  repository.FriendshipRepository
	profileRepo repository.ProfileRepository
	metrics     *metrics.Collector
}

// NewGraphService creates a new GraphService. collector may be nil.
func NewGraphService(friendRepo repository.FriendshipRepository, profileRepo repository.ProfileRepository, collector *metrics.Collector) GraphService {
	return &graphService{
		friendRepo:  friendRepo,
		profileRepo: profileRepo,
		metrics:     collector,
	}
}

func (s *graphService) AddFriend(ctx context.Context, a, b int64) error {
	log := logger.FromContext(ctx)
	log.Debug("adding friendship: a=%d, b=%d", a, b)

	if err := s.friendRepo.Add(ctx, a, b); err != nil {
		return s.fail(ctx, metrics.OpAddFriend, err, a, b)
	}

	log.Info("friendship added: a=%d, b=%d", a, b)
	s.metrics.RecordOperation(metrics.OpAddFriend, metrics.OutcomeSuccess)
	return nil
}

func (s *graphService) RemoveFriend(ctx context.Context, a, b int64) error {
	log := logger.FromContext(ctx)
	log.Debug("removing friendship: a=%d, b=%d", a, b)

	if err := s.friendRepo.Remove(ctx, a, b); err != nil {
		return s.fail(ctx, metrics.OpRemoveFriend, err, a, b)
	}

	log.Info("friendship removed: a=%d, b=%d", a, b)
	s.metrics.RecordOperation(metrics.OpRemoveFriend, metrics.OutcomeSuccess)
	return nil
}

func (s *graphService) MakeBestFriend(ctx context.Context, id int64, target *int64) error {
	log := logger.FromContext(ctx)

	var b int64
	if target != nil {
		b = *target
		log.Debug("setting best friend: id=%d, target=%d", id, b)
	} else {
		log.Debug("clearing best friend: id=%d", id)
	}

	if err := s.friendRepo.SetBestFriend(ctx, id, target); err != nil {
		return s.fail(ctx, metrics.OpMakeBestFriend, err, id, b)
	}

	s.metrics.RecordOperation(metrics.OpMakeBestFriend, metrics.OutcomeSuccess)
	return nil
}

func (s *graphService) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	ok, err := s.friendRepo.AreFriends(ctx, a, b)
	if err != nil {
		logger.FromContext(ctx).Error("failed to check friendship: a=%d, b=%d, err=%v", a, b, err)
		return false, errors.NewInternalError(err)
	}
	return ok, nil
}

func (s *graphService) Friends(ctx context.Context, id int64) ([]models.Profile, error) {
	if err := s.requireProfile(ctx, id); err != nil {
		return nil, err
	}

	friends, err := s.friendRepo.Friends(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list friends: id=%d, err=%v", id, err)
		return nil, errors.NewInternalError(err)
	}
	return friends, nil
}

func (s *graphService) NonFriends(ctx context.Context, id int64) ([]models.Profile, error) {
	if err := s.requireProfile(ctx, id); err != nil {
		return nil, err
	}

	others, err := s.friendRepo.NonFriends(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list non-friends: id=%d, err=%v", id, err)
		return nil, errors.NewInternalError(err)
	}
	return others, nil
}

func (s *graphService) requireProfile(ctx context.Context, id int64) error {
	if _, err := s.profileRepo.Get(ctx, id); err != nil {
		appErr := translate(err, id, 0)
		if appErr.Status >= 500 {
			logger.FromContext(ctx).Error("failed to load profile: id=%d, err=%v", id, err)
		}
		return appErr
	}
	return nil
}

func (s *graphService) fail(ctx context.Context, op string, err error, a, b int64) error {
	appErr := translate(err, a, b)
	if appErr.Status >= 500 {
		logger.FromContext(ctx).Error("%s failed: a=%d, b=%d, err=%v", op, a, b, err)
	} else {
		logger.FromContext(ctx).Debug("%s rejected: a=%d, b=%d, code=%s", op, a, b, appErr.Code)
	}
	s.metrics.RecordOperation(op, outcome(appErr))
	return appErr
}
