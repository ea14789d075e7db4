package graphql

import (
	gql "github.com/graph-gophers/graphql-go"

	"github.com/magabrotheeeer/fitcheck/internal/models"
)

type userResolver struct {
	u *models.User
}

func (r *userResolver) UserID() gql.ID             { return gql.ID(r.u.UserID) }
func (r *userResolver) Name() string               { return r.u.Name }
func (r *userResolver) MembershipType() string     { return string(r.u.MembershipType) }
func (r *userResolver) SubscriptionStatus() string { return string(r.u.SubscriptionStatus) }
func (r *userResolver) HomeClubID() *string        { return r.u.HomeClubID }
func (r *userResolver) CheckedInClubID() *string   { return r.u.CheckedInClubID }

type clubResolver struct {
	c *models.Club
}

func (r *clubResolver) ClubID() gql.ID { return gql.ID(r.c.ClubID) }
func (r *clubResolver) Name() string   { return r.c.Name }

type classResolver struct {
	c *models.Class
}

func (r *classResolver) ClassID() gql.ID { return gql.ID(r.c.ClassID) }
func (r *classResolver) Name() string    { return r.c.Name }
func (r *classResolver) ClubID() string  { return r.c.ClubID }

// checkInResponseResolver отдаёт клиенту только success и message.
type checkInResponseResolver struct {
	out models.CheckInOutcome
}

func (r *checkInResponseResolver) Success() bool   { return r.out.Success }
func (r *checkInResponseResolver) Message() string { return r.out.Message }
