// Package memory реализует хранилище FitCheck в памяти процесса.
// Записи хранятся в порядке добавления, наружу отдаются копии.
// Синхронизации нет: предполагается один писатель.
package memory

import (
	"context"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Storage хранит пользователей, клубы и занятия.
type Storage struct {
	users   []*models.User
	clubs   []*models.Club
	classes []*models.Class

	userIdx  map[string]int
	clubIdx  map[string]int
	classIdx map[string]int
}

// New создаёт хранилище из переданных записей. Повторный ID заменяет предыдущую запись.
func New(users []models.User, clubs []models.Club, classes []models.Class) *Storage {
	s := &Storage{
		userIdx:  make(map[string]int, len(users)),
		clubIdx:  make(map[string]int, len(clubs)),
		classIdx: make(map[string]int, len(classes)),
	}
	for i := range users {
		s.putUser(users[i].Clone())
	}
	for _, c := range clubs {
		c := c
		if i, ok := s.clubIdx[c.ClubID]; ok {
			s.clubs[i] = &c
			continue
		}
		s.clubIdx[c.ClubID] = len(s.clubs)
		s.clubs = append(s.clubs, &c)
	}
	for _, c := range classes {
		c := c
		if i, ok := s.classIdx[c.ClassID]; ok {
			s.classes[i] = &c
			continue
		}
		s.classIdx[c.ClassID] = len(s.classes)
		s.classes = append(s.classes, &c)
	}
	return s
}

// NewSeeded создаёт хранилище с начальными данными.
func NewSeeded() *Storage {
	return New(SeedUsers(), SeedClubs(), SeedClasses())
}

func (s *Storage) putUser(u *models.User) {
	if i, ok := s.userIdx[u.UserID]; ok {
		s.users[i] = u
		return
	}
	s.userIdx[u.UserID] = len(s.users)
	s.users = append(s.users, u)
}

// FindUser возвращает копию пользователя или nil.
func (s *Storage) FindUser(_ context.Context, id string) (*models.User, error) {
	i, ok := s.userIdx[id]
	if !ok {
		return nil, nil
	}
	return s.users[i].Clone(), nil
}

// FindClub возвращает копию клуба или nil.
func (s *Storage) FindClub(_ context.Context, id string) (*models.Club, error) {
	i, ok := s.clubIdx[id]
	if !ok {
		return nil, nil
	}
	c := *s.clubs[i]
	return &c, nil
}

// FindClass возвращает копию занятия или nil.
func (s *Storage) FindClass(_ context.Context, id string) (*models.Class, error) {
	i, ok := s.classIdx[id]
	if !ok {
		return nil, nil
	}
	c := *s.classes[i]
	return &c, nil
}

// SetCheckedInClub перезаписывает текущий клуб пользователя. Существование клуба не проверяется.
func (s *Storage) SetCheckedInClub(_ context.Context, userID, clubID string) (*models.User, error) {
	i, ok := s.userIdx[userID]
	if !ok {
		return nil, nil
	}
	s.users[i].CheckedInClubID = models.StringPtr(clubID)
	return s.users[i].Clone(), nil
}

// ListUsers возвращает всех пользователей в порядке добавления.
func (s *Storage) ListUsers(_ context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	return out, nil
}

// ListClubs возвращает все клубы в порядке добавления.
func (s *Storage) ListClubs(_ context.Context) ([]*models.Club, error) {
	out := make([]*models.Club, 0, len(s.clubs))
	for _, c := range s.clubs {
		c := *c
		out = append(out, &c)
	}
	return out, nil
}

// ListClasses возвращает все занятия в порядке добавления.
func (s *Storage) ListClasses(_ context.Context) ([]*models.Class, error) {
	out := make([]*models.Class, 0, len(s.classes))
	for _, c := range s.classes {
		c := *c
		out = append(out, &c)
	}
	return out, nil
}
