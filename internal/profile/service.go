package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voxnova-backend/internal/impact"
	"voxnova-backend/internal/listings"
	"voxnova-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("User not found")

// Service assembles the profile view: the stored user record plus the
// impact aggregate recomputed from the user's listings on every fetch.
type Service struct {
	DB       *gorm.DB
	Listings *listings.Service
}

// ProfileView is the user record with the derived impact attached.
type ProfileView struct {
	models.User
	Impact impact.Profile `json:"impact"`
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// All statuses: impact weighs sold and active differently and ignores
	// the rest.
	history, err := s.Listings.ListBySeller(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	return &ProfileView{User: user, Impact: impact.Compute(history)}, nil
}

// UpdateProfileInput: nil pointers leave the field untouched.
type UpdateProfileInput struct {
	Name         *string `json:"name"`
	Bio          *string `json:"bio"`
	AvatarURL    *string `json:"avatar_url"`
	LastLocation *string `json:"last_location"`
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.AvatarURL != nil {
		updates["avatar_url"] = *in.AvatarURL
	}
	if in.LastLocation != nil {
		updates["last_location"] = *in.LastLocation
		updates["last_location_updated"] = time.Now()
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}
