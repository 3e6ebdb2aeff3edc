package service

import (
	"context"
	"fmt"

	"todo-notes/internal/domain"
	"todo-notes/internal/repository"
)

type ThemeService interface {
	Theme(ctx context.Context) domain.Theme
	SetTheme(ctx context.Context, theme domain.Theme) error
	Toggle(ctx context.Context) (domain.Theme, error)
}

type themeService struct {
	prefs repository.PreferenceRepository
}

func NewThemeService(prefs repository.PreferenceRepository) ThemeService {
	return &themeService{prefs: prefs}
}

func (s *themeService) Theme(ctx context.Context) domain.Theme {
	if theme, ok := s.prefs.Theme(ctx); ok {
		return theme
	}
	return domain.ThemeLight
}

func (s *themeService) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme must be %q or %q", ErrInvalidInput, domain.ThemeDark, domain.ThemeLight)
	}
	return s.prefs.SetTheme(ctx, theme)
}

func (s *themeService) Toggle(ctx context.Context) (domain.Theme, error) {
	next := domain.ThemeDark
	if s.Theme(ctx) == domain.ThemeDark {
		next = domain.ThemeLight
	}
	if err := s.prefs.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
