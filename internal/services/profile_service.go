package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/models"
	"github.com/vytor/monkeyapp/internal/repository"
	"github.com/vytor/monkeyapp/internal/validation"
)

// ProfileService handles profile-related business logic
type ProfileService interface {
	ListProfiles(ctx context.Context, order models.ProfileOrder) ([]models.ProfileListing, error)
	CreateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error)
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id int64, in models.ProfileInput) (*models.Profile, error)
	DeleteProfile(ctx context.Context, id int64) error
}

type profileService struct {
	profileRepo repository.ProfileRepository
	metrics     *metrics.Collector
}

// NewProfileService creates a new ProfileService. collector may be nil.
func NewProfileService(profileRepo repository.ProfileRepository, collector *metrics.Collector) ProfileService {
	return &profileService{profileRepo: profileRepo, metrics: collector}
}

func (s *profileService) ListProfiles(ctx context.Context, order models.ProfileOrder) ([]models.ProfileListing, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing profiles: order=%s", order)

	listings, err := s.profileRepo.List(ctx, order)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return listings, nil
}

func (s *profileService) CreateProfile(ctx context.Context, in models.ProfileInput) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating profile: name=%s", in.Name)

	fields, fieldErrs := validation.ValidateProfile(in)
	if fieldErrs != nil {
		s.metrics.RecordOperation(metrics.OpCreateProfile, metrics.OutcomeRejected)
		return nil, errors.NewFieldsError(fieldErrs)
	}

	profile, err := s.profileRepo.Create(ctx, fields)
	if err != nil {
		appErr := s.storeError(ctx, err, fields, 0)
		s.metrics.RecordOperation(metrics.OpCreateProfile, outcome(appErr))
		return nil, appErr
	}

	log.Info("profile created: id=%d", profile.ID)
	s.metrics.RecordOperation(metrics.OpCreateProfile, metrics.OutcomeSuccess)
	return profile, nil
}

func (s *profileService) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting profile: id=%d", id)

	profile, err := s.profileRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("profile", id)
		}
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, id int64, in models.ProfileInput) (*models.Profile, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating profile: id=%d", id)

	fields, fieldErrs := validation.ValidateProfile(in)
	if fieldErrs != nil {
		s.metrics.RecordOperation(metrics.OpUpdateProfile, metrics.OutcomeRejected)
		return nil, errors.NewFieldsError(fieldErrs)
	}

	profile, err := s.profileRepo.Update(ctx, id, fields)
	if err != nil {
		appErr := s.storeError(ctx, err, fields, id)
		s.metrics.RecordOperation(metrics.OpUpdateProfile, outcome(appErr))
		return nil, appErr
	}

	s.metrics.RecordOperation(metrics.OpUpdateProfile, metrics.OutcomeSuccess)
	return profile, nil
}

func (s *profileService) DeleteProfile(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting profile: id=%d", id)

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		appErr := translate(err, id, 0)
		if appErr.Status >= 500 {
			log.Error("failed to delete profile: %v", err)
		}
		s.metrics.RecordOperation(metrics.OpDeleteProfile, outcome(appErr))
		return appErr
	}

	log.Info("profile deleted: id=%d", id)
	s.metrics.RecordOperation(metrics.OpDeleteProfile, metrics.OutcomeSuccess)
	return nil
}

// storeError converts a failed write into an AppError, naming every
// offending value when unique columns clashed.
func (s *profileService) storeError(ctx context.Context, err error, fields models.ProfileFields, id int64) *errors.AppError {
	var dup *repository.DuplicateError
	if stderrors.As(err, &dup) {
		values := validation.UniqueValues(fields)
		clashes := make(map[string]string, len(dup.Fields))
		for _, field := range dup.Fields {
			clashes[field] = values[field]
		}
		return errors.NewConflictError(clashes)
	}

	appErr := translate(err, id, 0)
	if appErr.Status >= 500 {
		logger.FromContext(ctx).Error("failed to store profile: %v", err)
	}
	return appErr
}
