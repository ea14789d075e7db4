// Package graphql реализует GraphQL API FitCheck: чтение участников, клубов и занятий
// и две мутации чекина, которые делегируют решение сервису checkin.
package graphql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/magabrotheeeer/fitcheck/internal/http/response"
	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Reader описывает чтение данных для запросов.
type Reader interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindClub(ctx context.Context, id string) (*models.Club, error)
	FindClass(ctx context.Context, id string) (*models.Class, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
}

// CheckInService описывает движок чекинов.
type CheckInService interface {
	CheckInClub(ctx context.Context, userID, clubID string) models.CheckInOutcome
	CheckInClass(ctx context.Context, userID, classID string) models.CheckInOutcome
}

// Resolver корневой резолвер Query и Mutation.
type Resolver struct {
	log      *slog.Logger
	reader   Reader
	service  CheckInService
	validate *validator.Validate
}

// NewResolver создает корневой резолвер.
func NewResolver(log *slog.Logger, reader Reader, service CheckInService) *Resolver {
	return &Resolver{
		log:      log,
		reader:   reader,
		service:  service,
		validate: validator.New(),
	}
}

// NewSchema разбирает схему и связывает её с резолвером.
func NewSchema(r *Resolver) (*gql.Schema, error) {
	const op = "graphql.NewSchema"

	schema, err := gql.ParseSchema(Schema, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return schema, nil
}

// NewHandler возвращает HTTP-обработчик для POST /graphql.
func NewHandler(log *slog.Logger, reader Reader, service CheckInService) (http.Handler, error) {
	schema, err := NewSchema(NewResolver(log, reader, service))
	if err != nil {
		return nil, err
	}
	return &relay.Handler{Schema: schema}, nil
}

// internalError скрывает детали сбоя хранилища от клиента.
func (r *Resolver) internalError(op string, err error) error {
	r.log.Error("query failed", sl.Op(op), sl.Err(err))
	return fmt.Errorf("%s: internal server error", op)
}

func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	const op = "graphql.Users"

	users, err := r.reader.ListUsers(ctx)
	if err != nil {
		return nil, r.internalError(op, err)
	}
	res := make([]*userResolver, 0, len(users))
	for _, u := range users {
		res = append(res, &userResolver{u: u})
	}
	return res, nil
}

func (r *Resolver) Clubs(ctx context.Context) ([]*clubResolver, error) {
	const op = "graphql.Clubs"

	clubs, err := r.reader.ListClubs(ctx)
	if err != nil {
		return nil, r.internalError(op, err)
	}
	res := make([]*clubResolver, 0, len(clubs))
	for _, c := range clubs {
		res = append(res, &clubResolver{c: c})
	}
	return res, nil
}

func (r *Resolver) Classes(ctx context.Context) ([]*classResolver, error) {
	const op = "graphql.Classes"

	classes, err := r.reader.ListClasses(ctx)
	if err != nil {
		return nil, r.internalError(op, err)
	}
	res := make([]*classResolver, 0, len(classes))
	for _, c := range classes {
		res = append(res, &classResolver{c: c})
	}
	return res, nil
}

func (r *Resolver) User(ctx context.Context, args struct{ UserID gql.ID }) (*userResolver, error) {
	const op = "graphql.User"

	u, err := r.reader.FindUser(ctx, string(args.UserID))
	if err != nil {
		return nil, r.internalError(op, err)
	}
	if u == nil {
		return nil, nil
	}
	return &userResolver{u: u}, nil
}

func (r *Resolver) Club(ctx context.Context, args struct{ ClubID gql.ID }) (*clubResolver, error) {
	const op = "graphql.Club"

	c, err := r.reader.FindClub(ctx, string(args.ClubID))
	if err != nil {
		return nil, r.internalError(op, err)
	}
	if c == nil {
		return nil, nil
	}
	return &clubResolver{c: c}, nil
}

func (r *Resolver) Class(ctx context.Context, args struct{ ClassID gql.ID }) (*classResolver, error) {
	const op = "graphql.Class"

	c, err := r.reader.FindClass(ctx, string(args.ClassID))
	if err != nil {
		return nil, r.internalError(op, err)
	}
	if c == nil {
		return nil, nil
	}
	return &classResolver{c: c}, nil
}

// CheckInClubInput входные данные мутации checkInClub.
type CheckInClubInput struct {
	UserID gql.ID `validate:"required"`
	ClubID gql.ID `validate:"required"`
}

// CheckInClassInput входные данные мутации checkInClass.
type CheckInClassInput struct {
	UserID  gql.ID `validate:"required"`
	ClassID gql.ID `validate:"required"`
}

func (r *Resolver) CheckInClub(ctx context.Context, args struct{ Input CheckInClubInput }) (*checkInResponseResolver, error) {
	if err := r.validateInput(args.Input); err != nil {
		return nil, err
	}
	out := r.service.CheckInClub(ctx, string(args.Input.UserID), string(args.Input.ClubID))
	return &checkInResponseResolver{out: out}, nil
}

func (r *Resolver) CheckInClass(ctx context.Context, args struct{ Input CheckInClassInput }) (*checkInResponseResolver, error) {
	if err := r.validateInput(args.Input); err != nil {
		return nil, err
	}
	out := r.service.CheckInClass(ctx, string(args.Input.UserID), string(args.Input.ClassID))
	return &checkInResponseResolver{out: out}, nil
}

// validateInput проверяет, что идентификаторы не пустые.
func (r *Resolver) validateInput(input any) error {
	err := r.validate.Struct(input)
	if err == nil {
		return nil
	}
	r.log.Warn("validation failed", sl.Err(err))
	if verrs, ok := err.(validator.ValidationErrors); ok {
		return errors.New(response.ValidationError(verrs).Error)
	}
	return err
}
