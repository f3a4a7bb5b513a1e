package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/repository"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type profileStore interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

type subscriptionStore interface {
	Save(ctx context.Context, sub *models.PushSubscription) error
	ListByUser(ctx context.Context, userID string) ([]models.PushSubscription, error)
	Remove(ctx context.Context, userID, endpoint string) error
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	DisplayName string            `json:"display_name" validate:"required,max=120"`
	AvatarURL   string            `json:"avatar_url" validate:"omitempty,url"`
	Phone       string            `json:"phone" validate:"omitempty,max=32"`
	Extras      map[string]string `json:"extras"`
}

// SubscribeRequest registers one push endpoint for the caller.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256DH   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// ProfileService manages profile documents and push subscriptions in the
// document store.
type ProfileService struct {
	profiles      profileStore
	subscriptions subscriptionStore
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles profileStore, subscriptions subscriptionStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{profiles: profiles, subscriptions: subscriptions, validator: validate, logger: logger}
}

// Get loads the caller's profile document.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Update writes the caller's profile document.
func (s *ProfileService) Update(ctx context.Context, claims *models.JWTClaims, req UpdateProfileRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile := &models.Profile{
		UserID:        claims.UserID,
		InstitutionID: claims.InstitutionID,
		Role:          claims.Role,
		DisplayName:   req.DisplayName,
		AvatarURL:     req.AvatarURL,
		Phone:         req.Phone,
		Extras:        req.Extras,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	return profile, nil
}

// Subscribe registers a push endpoint for the caller.
func (s *ProfileService) Subscribe(ctx context.Context, userID string, req SubscribeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscription payload")
	}
	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		Keys:     models.SubKeys{P256DH: req.P256DH, Auth: req.Auth},
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save subscription")
	}
	return nil
}

// Unsubscribe removes one of the caller's endpoints.
func (s *ProfileService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return appErrors.Clone(appErrors.ErrValidation, "endpoint is required")
	}
	if err := s.subscriptions.Remove(ctx, userID, endpoint); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove subscription")
	}
	return nil
}

// Subscriptions lists the caller's registered endpoints.
func (s *ProfileService) Subscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	subs, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscriptions")
	}
	return subs, nil
}
