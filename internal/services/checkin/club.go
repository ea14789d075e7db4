package checkin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// CheckInClub пытается отметить участника в клубе.
//
// Порядок проверок:
//   - пользователь существует;
//   - подписка активна;
//   - тип членства разрешает вход в клуб (для SINGLE_CLUB только домашний клуб).
//
// При успехе в хранилище записывается текущий клуб пользователя.
func (s *Service) CheckInClub(ctx context.Context, userID, clubID string) (out models.CheckInOutcome) {
	const op = "checkin.CheckInClub"

	ctx, span := s.tracer.Start(ctx, OpCheckInClub, "Club check-in transaction")
	defer func() {
		span.Finish()
		s.observe(ctx, models.KindClub, userID, clubID, out)
	}()
	defer s.recoverFault(ctx, span, op, &out)

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("club_id", clubID))

	_, userSpan := s.tracer.Start(ctx, OpQueryUser, "Fetch user data")
	user, err := s.store.FindUser(ctx, userID)
	userSpan.Finish()
	if err != nil {
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
	}
	if user == nil {
		log.Info("user not found")
		return fail(span, models.ReasonUserNotFound, models.MessageUserNotFound)
	}

	span.SetTag(TagMembershipType, string(user.MembershipType))

	_, subSpan := s.tracer.Start(ctx, OpVerifySubscription, "Verify subscription status")
	active := user.IsActive()
	subSpan.Finish()
	if !active {
		log.Info("subscription is not active")
		return fail(span, models.ReasonInactiveSubscription, models.MessageInactive)
	}

	switch user.MembershipType {
	case models.MembershipAllAccess:
		return s.recordClubCheckIn(ctx, span, log, userID, clubID)

	case models.MembershipSingleClub:
		// Домашний клуб берётся до ожидания: сравнение идёт с состоянием на начало проверки.
		var homeClubID string
		hasHome := user.HomeClubID != nil
		if hasHome {
			homeClubID = *user.HomeClubID
		}

		locCtx, locSpan := s.tracer.Start(ctx, OpVerifyLocation, "Verify home club location")
		if err := s.verifier.Verify(locCtx, userID, clubID); err != nil {
			locSpan.Finish()
			return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
		}
		if !hasHome || homeClubID != clubID {
			locSpan.Finish()
			log.Info("single club member attempted check-in at another club", slog.String("home_club_id", homeClubID))
			return fail(span, models.ReasonWrongClub, models.MessageWrongClub)
		}
		locSpan.Finish()
		return s.recordClubCheckIn(ctx, span, log, userID, clubID)

	default:
		log.Info("membership does not allow club check-in", slog.String("membership_type", string(user.MembershipType)))
		return fail(span, models.ReasonInvalidMembership, models.MessageInvalidMembership)
	}
}

// recordClubCheckIn проверяет, что клуб существует, и записывает чекин.
func (s *Service) recordClubCheckIn(ctx context.Context, span Span, log *slog.Logger, userID, clubID string) models.CheckInOutcome {
	const op = "checkin.recordClubCheckIn"

	_, recSpan := s.tracer.Start(ctx, OpRecordCheckIn, "Record club check-in")
	defer recSpan.Finish()

	club, err := s.store.FindClub(ctx, clubID)
	if err != nil {
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
	}
	if club == nil {
		log.Info("club not found")
		return fail(span, models.ReasonClubNotFound, models.MessageClubNotFound)
	}

	updated, err := s.store.SetCheckedInClub(ctx, userID, clubID)
	if err != nil {
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
	}
	if updated == nil {
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, ErrUserVanished))
	}

	span.SetTag(TagOutcome, OutcomeSuccess)
	log.Info("checked into club")
	return models.Succeeded(models.MessageClubCheckedIn)
}
