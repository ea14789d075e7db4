package memory

import "github.com/magabrotheeeer/fitcheck/internal/models"

// Идентификаторы начальных данных.
const (
	UserAlice  = "a1b2c3d4-e5f6-7890-1234-567890abcdef"
	UserSteve  = "b2c3d4e5-f6a7-8901-2345-67890abcdef1"
	UserConnie = "d4e5f6a7-b8c9-0123-4567-890abcdef123"
	UserIrene  = "c3d4e5f6-a7b8-9012-3456-7890abcdef12"

	ClubHudsonYards = "club-nyc-hudson-yards"
	ClubLA          = "club-la-sports-club"

	ClassNYCYoga   = "class-nyc-yoga-101"
	ClassNYCSpin   = "class-nyc-spin-201"
	ClassLAPilates = "class-la-pilates-101"
	ClassLAHIIT    = "class-la-hiit-301"
)

// SeedUsers возвращает начальный набор пользователей.
func SeedUsers() []models.User {
	return []models.User{
		{
			UserID:             UserAlice,
			Name:               "Alice Access",
			MembershipType:     models.MembershipAllAccess,
			SubscriptionStatus: models.SubscriptionActive,
		},
		{
			UserID:             UserSteve,
			Name:               "Steve Single",
			MembershipType:     models.MembershipSingleClub,
			SubscriptionStatus: models.SubscriptionActive,
			HomeClubID:         models.StringPtr(ClubHudsonYards),
		},
		{
			UserID:             UserConnie,
			Name:               "Connie Class",
			MembershipType:     models.MembershipClassAccess,
			SubscriptionStatus: models.SubscriptionActive,
		},
		{
			UserID:             UserIrene,
			Name:               "Inactive Irene",
			MembershipType:     models.MembershipAllAccess,
			SubscriptionStatus: models.SubscriptionInactive,
		},
	}
}

// SeedClubs возвращает начальный набор клубов.
func SeedClubs() []models.Club {
	return []models.Club{
		{ClubID: ClubHudsonYards, Name: "The Sports Club Hudson Yards"},
		{ClubID: ClubLA, Name: "The Sports Club LA"},
	}
}

// SeedClasses возвращает начальный набор занятий.
func SeedClasses() []models.Class {
	return []models.Class{
		{ClassID: ClassNYCYoga, Name: "Vinyasa Yoga", ClubID: ClubHudsonYards},
		{ClassID: ClassNYCSpin, Name: "Power Spin", ClubID: ClubHudsonYards},
		{ClassID: ClassLAPilates, Name: "Mat Pilates", ClubID: ClubLA},
		{ClassID: ClassLAHIIT, Name: "Advanced HIIT", ClubID: ClubLA},
	}
}
