package service

import (
	"context"
	"fmt"
	"strings"

	"food-rag-be/internal/dto"
	"food-rag-be/internal/entity"
	"food-rag-be/internal/pkg/logger"
	"food-rag-be/internal/pkg/serverutils"
	"food-rag-be/internal/repository/contract"
	"food-rag-be/internal/repository/memory"
	"food-rag-be/internal/repository/specification"
	"food-rag-be/pkg/store"
)

const preferenceModule = "Preferences"

type IPreferenceService interface {
	Get(ctx context.Context, userId string) (*dto.PreferencesResponse, error)
	Save(ctx context.Context, userId string, req dto.PreferencesDTO) (*dto.PreferencesResponse, error)
	Delete(ctx context.Context, userId string) error
	// Resolve returns the stored preferences, or empty ones when none exist.
	Resolve(ctx context.Context, userId string) (store.Preferences, error)
}

type preferenceService struct {
	repo   contract.UserPreferenceRepository
	cache  *memory.PreferenceCache
	logger logger.ILogger
}

func NewPreferenceService(repo contract.UserPreferenceRepository, cache *memory.PreferenceCache, log logger.ILogger) IPreferenceService {
	return &preferenceService{repo: repo, cache: cache, logger: log}
}

func (s *preferenceService) Get(ctx context.Context, userId string) (*dto.PreferencesResponse, error) {
	userId, err := cleanUserID(userId)
	if err != nil {
		return nil, err
	}

	pref, err := s.repo.FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return &dto.PreferencesResponse{UserId: userId, Preferences: dto.NewPreferencesDTO(store.Preferences{})}, nil
	}

	s.cache.Save(userId, pref.Preferences)
	return &dto.PreferencesResponse{
		UserId:      userId,
		Preferences: dto.NewPreferencesDTO(pref.Preferences),
		UpdatedAt:   pref.UpdatedAt,
	}, nil
}

func (s *preferenceService) Save(ctx context.Context, userId string, req dto.PreferencesDTO) (*dto.PreferencesResponse, error) {
	userId, err := cleanUserID(userId)
	if err != nil {
		return nil, err
	}

	pref := &entity.UserPreference{UserId: userId, Preferences: req.ToStore()}
	if err := s.repo.Save(ctx, pref); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	s.cache.Save(userId, pref.Preferences)

	s.logger.Info(preferenceModule, "Preferences saved", map[string]interface{}{"user_id": userId})
	return &dto.PreferencesResponse{
		UserId:      userId,
		Preferences: dto.NewPreferencesDTO(pref.Preferences),
		UpdatedAt:   pref.UpdatedAt,
	}, nil
}

func (s *preferenceService) Delete(ctx context.Context, userId string) error {
	userId, err := cleanUserID(userId)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userId); err != nil {
		return fmt.Errorf("delete preferences: %w", err)
	}
	s.cache.Delete(userId)

	s.logger.Info(preferenceModule, "Preferences deleted", map[string]interface{}{"user_id": userId})
	return nil
}

func (s *preferenceService) Resolve(ctx context.Context, userId string) (store.Preferences, error) {
	userId = strings.TrimSpace(userId)
	if userId == "" {
		return store.Preferences{}, nil
	}
	if prefs, ok := s.cache.Get(userId); ok {
		return prefs, nil
	}

	pref, err := s.repo.FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return store.Preferences{}, err
	}
	if pref == nil {
		s.cache.Save(userId, store.Preferences{})
		return store.Preferences{}, nil
	}
	s.cache.Save(userId, pref.Preferences)
	return pref.Preferences, nil
}

func cleanUserID(userId string) (string, error) {
	userId = strings.TrimSpace(userId)
	if userId == "" || len(userId) > 128 {
		return "", serverutils.NewValidationError("user_id", "must be 1 to 128 characters")
	}
	return userId, nil
}
