package models

import "time"

// FailureReason причина отказа в чекине. Используется для тегов трассировки и метрик.
type FailureReason string

const (
	ReasonUserNotFound         FailureReason = "user_not_found"
	ReasonClassNotFound        FailureReason = "class_not_found"
	ReasonClubNotFound         FailureReason = "club_not_found"
	ReasonInactiveSubscription FailureReason = "inactive_subscription"
	ReasonWrongClub            FailureReason = "wrong_club"
	ReasonInvalidMembership    FailureReason = "invalid_membership"
	ReasonNoAccess             FailureReason = "no_access"
	ReasonError                FailureReason = "error"
)

// AccessPath путь, по которому участник получил доступ на занятие.
type AccessPath string

const (
	// AccessPathClub участник сейчас находится в клубе, где проходит занятие.
	AccessPathClub AccessPath = "club_access"
	// AccessPathMembership доступ даёт сам тип членства.
	AccessPathMembership AccessPath = "membership_access"
)

// Тексты ответов, которые видит клиент API.
const (
	MessageClubCheckedIn     = "Successfully checked into club"
	MessageClassCheckedIn    = "Successfully checked into class"
	MessageUserNotFound      = "User not found"
	MessageClassNotFound     = "Class not found"
	MessageClubNotFound      = "Club not found"
	MessageInactive          = "Subscription is not active"
	MessageWrongClub         = "You can only check into your home club"
	MessageInvalidMembership = "Invalid membership type for club check-in"
	MessageNoAccess          = "You do not have access to this class"
	MessageInternalError     = "Internal server error"
)

// CheckInOutcome результат попытки чекина. Reason пуст при успехе,
// AccessPath заполняется только для занятий.
type CheckInOutcome struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Reason     FailureReason `json:"-"`
	AccessPath AccessPath    `json:"-"`
}

// Succeeded формирует успешный результат.
func Succeeded(message string) CheckInOutcome {
	return CheckInOutcome{Success: true, Message: message}
}

// Failed формирует отказ с причиной.
func Failed(reason FailureReason, message string) CheckInOutcome {
	return CheckInOutcome{Reason: reason, Message: message}
}

// CheckInKind вид чекина.
type CheckInKind string

const (
	KindClub  CheckInKind = "club"
	KindClass CheckInKind = "class"
)

// CheckInEvent событие об успешном чекине, которое уходит во внешние системы.
type CheckInEvent struct {
	EventID    string      `json:"event_id"`
	Kind       CheckInKind `json:"kind"`
	UserID     string      `json:"user_id"`
	TargetID   string      `json:"target_id"`
	AccessPath AccessPath  `json:"access_path,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}
