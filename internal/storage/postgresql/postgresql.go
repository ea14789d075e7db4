// Package postgresql реализует хранилище FitCheck на основе PostgreSQL.
// Порядок выдачи списков задаётся колонкой position (порядок добавления).
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, connectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

const userColumns = `user_id, name, membership_type, subscription_status, home_club_id, checked_in_club_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		homeClub  sql.NullString
		checkedIn sql.NullString
	)
	if err := row.Scan(&u.UserID, &u.Name, &u.MembershipType, &u.SubscriptionStatus, &homeClub, &checkedIn); err != nil {
		return nil, err
	}
	if homeClub.Valid {
		u.HomeClubID = models.StringPtr(homeClub.String)
	}
	if checkedIn.Valid {
		u.CheckedInClubID = models.StringPtr(checkedIn.String)
	}
	return &u, nil
}

// FindUser возвращает пользователя по ID или nil.
func (s *Storage) FindUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgresql.FindUser"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindClub возвращает клуб по ID или nil.
func (s *Storage) FindClub(ctx context.Context, id string) (*models.Club, error) {
	const op = "storage.postgresql.FindClub"

	var c models.Club
	err := s.DB.QueryRowContext(ctx, `SELECT club_id, name FROM clubs WHERE club_id = $1`, id).
		Scan(&c.ClubID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// FindClass возвращает занятие по ID или nil.
func (s *Storage) FindClass(ctx context.Context, id string) (*models.Class, error) {
	const op = "storage.postgresql.FindClass"

	var c models.Class
	err := s.DB.QueryRowContext(ctx, `SELECT class_id, name, club_id FROM classes WHERE class_id = $1`, id).
		Scan(&c.ClassID, &c.Name, &c.ClubID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// SetCheckedInClub записывает текущий клуб пользователя и возвращает обновлённую запись.
// Существование клуба здесь не проверяется.
func (s *Storage) SetCheckedInClub(ctx context.Context, userID, clubID string) (*models.User, error) {
	const op = "storage.postgresql.SetCheckedInClub"

	row := s.DB.QueryRowContext(ctx,
		`UPDATE users SET checked_in_club_id = $2 WHERE user_id = $1 RETURNING `+userColumns,
		userID, clubID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей в порядке добавления.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.postgresql.ListUsers"

	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListClubs возвращает все клубы в порядке добавления.
func (s *Storage) ListClubs(ctx context.Context) ([]*models.Club, error) {
	const op = "storage.postgresql.ListClubs"

	rows, err := s.DB.QueryContext(ctx, `SELECT club_id, name FROM clubs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Club{}
	for rows.Next() {
		var c models.Club
		if err := rows.Scan(&c.ClubID, &c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListClasses возвращает все занятия в порядке добавления.
func (s *Storage) ListClasses(ctx context.Context) ([]*models.Class, error) {
	const op = "storage.postgresql.ListClasses"

	rows, err := s.DB.QueryContext(ctx, `SELECT class_id, name, club_id FROM classes ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []*models.Class{}
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ClassID, &c.Name, &c.ClubID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
