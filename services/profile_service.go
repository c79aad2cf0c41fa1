// File: /services/profile_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"serenity-api/models"
	"serenity-api/store"
)

// ProfileSeed carries the initial fields for a profile created on
// first registration or first load.
type ProfileSeed struct {
	Name      string
	Email     string
	Avatar    *string
	Bio       *string
	CleanDate *time.Time
}

// ProfileService owns the one-profile-per-user documents in the
// "profiles" collection.
type ProfileService struct {
	docs store.DocumentStore
}

func NewProfileService(docs store.DocumentStore) *ProfileService {
	return &ProfileService{docs: docs}
}

// CreateIfAbsent creates the profile for userID unless one already
// exists, in which case the existing profile is returned unchanged.
// Safe to call repeatedly with the same userID.
func (s *ProfileService) CreateIfAbsent(ctx context.Context, userID string, seed ProfileSeed) (*models.Profile, error) {
	existing, err := s.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	fields := map[string]interface{}{
		"name":       seed.Name,
		"email":      seed.Email,
		"avatar":     seed.Avatar,
		"bio":        seed.Bio,
		"clean_date": seed.CleanDate,
		"friends":    []string{},
	}

	doc, err := s.docs.CreateDocument(ctx, store.CollectionProfiles, userID, fields)
	if errors.Is(err, store.ErrConflict) {
		// Lost a create race; the winner's document is the profile.
		return s.GetByUserID(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("create profile %s: %w", userID, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
	}).Info("profile created")

	return models.ProfileFromDocument(doc)
}

// GetByUserID returns the profile for userID, or (nil, nil) when none
// exists. Absence is not an error on read paths.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	doc, err := s.docs.GetDocument(ctx, store.CollectionProfiles, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	return models.ProfileFromDocument(doc)
}

// Update merges partial fields into the profile and stamps UpdatedAt.
// Returns store.ErrNotFound when no profile exists for userID.
func (s *ProfileService) Update(ctx context.Context, userID string, fields map[string]interface{}) (*models.Profile, error) {
	doc, err := s.docs.UpdateDocument(ctx, store.CollectionProfiles, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("update profile %s: %w", userID, err)
	}

	return models.ProfileFromDocument(doc)
}
