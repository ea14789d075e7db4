// Package class реализует HTTP-обработчик чекина участника на занятие.
package class

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fitcheck/internal/http/response"
	"github.com/magabrotheeeer/fitcheck/internal/lib/sl"
	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// Request тело запроса POST /api/v1/checkins/class.
type Request struct {
	UserID  string `json:"user_id" validate:"required"`
	ClassID string `json:"class_id" validate:"required"`
}

// Service описывает движок чекинов на занятия.
type Service interface {
	CheckInClass(ctx context.Context, userID, classID string) models.CheckInOutcome
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkin.class"
	log := h.log.With(
		sl.Op(op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	out := h.service.CheckInClass(r.Context(), req.UserID, req.ClassID)
	log.Info("class check-in evaluated",
		slog.String("user_id", req.UserID),
		slog.String("class_id", req.ClassID),
		slog.Bool("success", out.Success),
		slog.String("access_path", string(out.AccessPath)),
	)
	render.JSON(w, r, response.OKWithData(out))
}
