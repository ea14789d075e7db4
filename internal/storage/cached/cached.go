// Package cached добавляет к хранилищу кеш для клубов и занятий.
// Клубы и занятия не меняются после создания, поэтому кеш не инвалидируется.
// Пользователи не кешируются: их текущий клуб меняется при каждом чекине.
package cached

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Repository хранилище, которое оборачивает Storage.
type Repository interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindClub(ctx context.Context, id string) (*models.Club, error)
	FindClass(ctx context.Context, id string) (*models.Class, error)
	SetCheckedInClub(ctx context.Context, userID, clubID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Storage кеширует FindClub и FindClass, остальные вызовы передаёт как есть.
type Storage struct {
	Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// New создаёт Storage.
func New(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Storage {
	return &Storage{
		Repository: repo,
		cache:      cache,
		ttl:        ttl,
		log:        log,
	}
}

func clubKey(id string) string  { return fmt.Sprintf("club:%s", id) }
func classKey(id string) string { return fmt.Sprintf("class:%s", id) }

// FindClub ищет клуб сначала в кеше, затем в хранилище.
// Ошибки кеша только логируются.
func (s *Storage) FindClub(ctx context.Context, id string) (*models.Club, error) {
	const op = "cached.FindClub"
	key := clubKey(id)

	var club models.Club
	found, err := s.cache.Get(ctx, key, &club)
	if err != nil {
		s.log.Warn("failed to read from cache", sl.Op(op), slog.String("key", key), sl.Err(err))
	}
	if found {
		return &club, nil
	}

	res, err := s.Repository.FindClub(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res != nil {
		if err := s.cache.Set(ctx, key, res, s.ttl); err != nil {
			s.log.Warn("failed to add to cache", sl.Op(op), slog.String("key", key), sl.Err(err))
		}
	}
	return res, nil
}

// FindClass ищет занятие сначала в кеше, затем в хранилище.
func (s *Storage) FindClass(ctx context.Context, id string) (*models.Class, error) {
	const op = "cached.FindClass"
	key := classKey(id)

	var class models.Class
	found, err := s.cache.Get(ctx, key, &class)
	if err != nil {
		s.log.Warn("failed to read from cache", sl.Op(op), slog.String("key", key), sl.Err(err))
	}
	if found {
		return &class, nil
	}

	res, err := s.Repository.FindClass(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res != nil {
		if err := s.cache.Set(ctx, key, res, s.ttl); err != nil {
			s.log.Warn("failed to add to cache", sl.Op(op), slog.String("key", key), sl.Err(err))
		}
	}
	return res, nil
}
