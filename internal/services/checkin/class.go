package checkin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

// CheckInClass пытается отметить участника на занятии.
//
// Доступ определяется в фиксированном порядке: сначала по присутствию в клубе,
// где проходит занятие (club_access), затем по типу членства (membership_access).
// Посещение занятия в хранилище не записывается.
func (s *Service) CheckInClass(ctx context.Context, userID, classID string) (out models.CheckInOutcome) {
	const op = "checkin.CheckInClass"

	ctx, span := s.tracer.Start(ctx, OpCheckInClass, "Class check-in transaction")
	defer func() {
		span.Finish()
		s.observe(ctx, models.KindClass, userID, classID, out)
	}()
	defer s.recoverFault(ctx, span, op, &out)

	log := s.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("class_id", classID))

	_, dataSpan := s.tracer.Start(ctx, OpQueryUserAndClass, "Fetch user and class data")
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		dataSpan.Finish()
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
	}
	class, err := s.store.FindClass(ctx, classID)
	dataSpan.Finish()
	if err != nil {
		return s.fault(ctx, span, op, fmt.Errorf("%s: %w", op, err))
	}

	if user == nil {
		log.Info("user not found")
		return fail(span, models.ReasonUserNotFound, models.MessageUserNotFound)
	}
	if class == nil {
		log.Info("class not found")
		return fail(span, models.ReasonClassNotFound, models.MessageClassNotFound)
	}

	span.SetTag(TagMembershipType, string(user.MembershipType))

	_, subSpan := s.tracer.Start(ctx, OpVerifySubscription, "Verify subscription status")
	active := user.IsActive()
	subSpan.Finish()
	if !active {
		log.Info("subscription is not active")
		return fail(span, models.ReasonInactiveSubscription, models.MessageInactive)
	}

	_, accessSpan := s.tracer.Start(ctx, OpVerifyAccessPath, "Verify class access path")
	path, ok := accessPath(user, class)
	accessSpan.Finish()
	span.SetTag(TagAccessPath, string(path))

	if !ok {
		log.Info("no access to class")
		return fail(span, models.ReasonNoAccess, models.MessageNoAccess)
	}

	span.SetTag(TagOutcome, OutcomeSuccess)
	log.Info("checked into class", slog.String("access_path", string(path)))
	out = models.Succeeded(models.MessageClassCheckedIn)
	out.AccessPath = path
	return out
}

// accessPath возвращает первый подходящий путь доступа на занятие.
func accessPath(user *models.User, class *models.Class) (models.AccessPath, bool) {
	if user.CheckedInClubID != nil && *user.CheckedInClubID == class.ClubID {
		return models.AccessPathClub, true
	}
	switch user.MembershipType {
	case models.MembershipClassAccess, models.MembershipAllAccess:
		return models.AccessPathMembership, true
	}
	return "", false
}
