// Package models содержит доменные структуры FitCheck: участников клуба,
// клубы, занятия и результат попытки чекина.
package models

// MembershipType тип членства участника.
type MembershipType string

const (
	// MembershipAllAccess даёт доступ в любой клуб и на любое занятие.
	MembershipAllAccess MembershipType = "ALL_ACCESS"
	// MembershipSingleClub ограничивает участника одним домашним клубом.
	MembershipSingleClub MembershipType = "SINGLE_CLUB"
	// MembershipClassAccess даёт доступ на занятия в любом клубе, но не в сам клуб.
	MembershipClassAccess MembershipType = "CLASS_ACCESS"
)

// SubscriptionStatus статус оплаченной подписки.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionInactive SubscriptionStatus = "INACTIVE"
)

// User представляет участника фитнес-сети.
type User struct {
	UserID             string             `json:"user_id"`
	Name               string             `json:"name"`
	MembershipType     MembershipType     `json:"membership_type"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	HomeClubID         *string            `json:"home_club_id,omitempty"`       // Задан только для SINGLE_CLUB
	CheckedInClubID    *string            `json:"checked_in_club_id,omitempty"` // Клуб, в котором участник сейчас находится
}

// IsActive сообщает, активна ли подписка участника.
func (u *User) IsActive() bool {
	return u.SubscriptionStatus == SubscriptionActive
}

// Clone возвращает независимую копию пользователя.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.HomeClubID != nil {
		v := *u.HomeClubID
		c.HomeClubID = &v
	}
	if u.CheckedInClubID != nil {
		v := *u.CheckedInClubID
		c.CheckedInClubID = &v
	}
	return &c
}

// StringPtr возвращает указатель на копию строки.
func StringPtr(s string) *string {
	return &s
}
