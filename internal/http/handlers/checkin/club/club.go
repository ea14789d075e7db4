// Package club реализует HTTP-обработчик чекина участника в клуб.
//
// Handler принимает JSON с идентификаторами участника и клуба, валидирует их
// и передаёт решение движку чекинов. Отказ в допуске это успешный HTTP-ответ
// с success=false; ошибкой считается только некорректный запрос.
package club

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

// Request тело запроса POST /api/v1/checkins/club.
type Request struct {
	UserID string `json:"user_id" validate:"required"`
	ClubID string `json:"club_id" validate:"required"`
}

// Service описывает движок чекинов в клуб.
type Service interface {
	CheckInClub(ctx context.Context, userID, clubID string) models.CheckInOutcome
}

// Handler управляет HTTP-запросами на чекин в клуб.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkin.club"
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

	out := h.service.CheckInClub(r.Context(), req.UserID, req.ClubID)
	log.Info("club check-in evaluated",
		slog.String("user_id", req.UserID),
		slog.String("club_id", req.ClubID),
		slog.Bool("success", out.Success),
		slog.String("reason", string(out.Reason)),
	)
	render.JSON(w, r, response.OKWithData(out))
}
