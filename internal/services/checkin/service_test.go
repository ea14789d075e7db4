package checkin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fitcheck/internal/models"
	"github.com/magabrotheeeer/fitcheck/internal/storage/memory"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newSeededService(opts ...Option) (*Service, *memory.Storage) {
	store := memory.NewSeeded()
	return NewService(store, NewDelayVerifier(0), newNoopLogger(), opts...), store
}

type StoreMock struct{ mock.Mock }

func (m *StoreMock) FindUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *StoreMock) FindClub(ctx context.Context, id string) (*models.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Club), args.Error(1)
}

func (m *StoreMock) FindClass(ctx context.Context, id string) (*models.Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *StoreMock) SetCheckedInClub(ctx context.Context, userID, clubID string) (*models.User, error) {
	args := m.Called(ctx, userID, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type ReporterMock struct{ mock.Mock }

func (m *ReporterMock) Report(ctx context.Context, op string, err error) {
	m.Called(ctx, op, err)
}

type RecorderMock struct{ mock.Mock }

func (m *RecorderMock) Record(kind models.CheckInKind, outcome models.CheckInOutcome) {
	m.Called(kind, outcome)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, event models.CheckInEvent) error {
	return m.Called(ctx, event).Error(0)
}

// recordingTracer запоминает span'ы и их теги.
type recordingTracer struct {
	mu    sync.Mutex
	spans []*recordingSpan
}

type recordingSpan struct {
	op       string
	tags     map[string]string
	finished bool
}

func (t *recordingTracer) Start(ctx context.Context, op, _ string) (context.Context, Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := &recordingSpan{op: op, tags: map[string]string{}}
	t.spans = append(t.spans, s)
	return ctx, s
}

func (s *recordingSpan) SetTag(k, v string) { s.tags[k] = v }
func (s *recordingSpan) Finish()            { s.finished = true }

func (t *recordingTracer) root() *recordingSpan {
	return t.spans[0]
}

func (t *recordingTracer) ops() []string {
	out := make([]string, 0, len(t.spans))
	for _, s := range t.spans {
		out = append(out, s.op)
	}
	return out
}

func TestCheckInClub(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		clubID     string
		wantOK     bool
		wantReason models.FailureReason
		wantMsg    string
	}{
		{
			name:    "all access member checks into any club",
			userID:  memory.UserAlice,
			clubID:  memory.ClubHudsonYards,
			wantOK:  true,
			wantMsg: models.MessageClubCheckedIn,
		},
		{
			name:    "all access member checks into another club",
			userID:  memory.UserAlice,
			clubID:  memory.ClubLA,
			wantOK:  true,
			wantMsg: models.MessageClubCheckedIn,
		},
		{
			name:    "single club member checks into home club",
			userID:  memory.UserSteve,
			clubID:  memory.ClubHudsonYards,
			wantOK:  true,
			wantMsg: models.MessageClubCheckedIn,
		},
		{
			name:       "single club member at another club",
			userID:     memory.UserSteve,
			clubID:     memory.ClubLA,
			wantReason: models.ReasonWrongClub,
			wantMsg:    "You can only check into your home club",
		},
		{
			name:       "class access member cannot check into club",
			userID:     memory.UserConnie,
			clubID:     memory.ClubHudsonYards,
			wantReason: models.ReasonInvalidMembership,
			wantMsg:    "Invalid membership type for club check-in",
		},
		{
			name:       "inactive subscription",
			userID:     memory.UserIrene,
			clubID:     memory.ClubHudsonYards,
			wantReason: models.ReasonInactiveSubscription,
			wantMsg:    "Subscription is not active",
		},
		{
			name:       "unknown user",
			userID:     "missing",
			clubID:     memory.ClubHudsonYards,
			wantReason: models.ReasonUserNotFound,
			wantMsg:    "User not found",
		},
		{
			name:       "unknown club for all access member",
			userID:     memory.UserAlice,
			clubID:     "club-nowhere",
			wantReason: models.ReasonClubNotFound,
			wantMsg:    models.MessageClubNotFound,
		},
		{
			name:       "unknown club for single club member is a wrong club",
			userID:     memory.UserSteve,
			clubID:     "club-nowhere",
			wantReason: models.ReasonWrongClub,
			wantMsg:    models.MessageWrongClub,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSeededService()

			out := svc.CheckInClub(context.Background(), tt.userID, tt.clubID)

			assert.Equal(t, tt.wantOK, out.Success)
			assert.Equal(t, tt.wantReason, out.Reason)
			assert.Equal(t, tt.wantMsg, out.Message)

			user, err := store.FindUser(context.Background(), tt.userID)
			require.NoError(t, err)
			if user == nil {
				return
			}
			if tt.wantOK {
				require.NotNil(t, user.CheckedInClubID)
				assert.Equal(t, tt.clubID, *user.CheckedInClubID)
			} else {
				assert.Nil(t, user.CheckedInClubID, "failed check-in must not change state")
			}
		})
	}
}

func TestCheckInClass(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		classID    string
		checkedIn  string
		wantOK     bool
		wantReason models.FailureReason
		wantPath   models.AccessPath
		wantMsg    string
	}{
		{
			name:     "all access member via membership",
			userID:   memory.UserAlice,
			classID:  memory.ClassNYCYoga,
			wantOK:   true,
			wantPath: models.AccessPathMembership,
			wantMsg:  models.MessageClassCheckedIn,
		},
		{
			name:     "class access member via membership",
			userID:   memory.UserConnie,
			classID:  memory.ClassLAHIIT,
			wantOK:   true,
			wantPath: models.AccessPathMembership,
			wantMsg:  "Successfully checked into class",
		},
		{
			name:       "single club member not checked in",
			userID:     memory.UserSteve,
			classID:    memory.ClassNYCYoga,
			wantReason: models.ReasonNoAccess,
			wantMsg:    "You do not have access to this class",
		},
		{
			name:      "single club member checked into hosting club",
			userID:    memory.UserSteve,
			classID:   memory.ClassNYCSpin,
			checkedIn: memory.ClubHudsonYards,
			wantOK:    true,
			wantPath:  models.AccessPathClub,
			wantMsg:   models.MessageClassCheckedIn,
		},
		{
			name:       "single club member checked into another club",
			userID:     memory.UserSteve,
			classID:    memory.ClassLAPilates,
			checkedIn:  memory.ClubHudsonYards,
			wantReason: models.ReasonNoAccess,
			wantMsg:    models.MessageNoAccess,
		},
		{
			name:      "club access wins over membership access",
			userID:    memory.UserAlice,
			classID:   memory.ClassLAPilates,
			checkedIn: memory.ClubLA,
			wantOK:    true,
			wantPath:  models.AccessPathClub,
			wantMsg:   models.MessageClassCheckedIn,
		},
		{
			name:       "inactive subscription even when checked in",
			userID:     memory.UserIrene,
			classID:    memory.ClassNYCYoga,
			checkedIn:  memory.ClubHudsonYards,
			wantReason: models.ReasonInactiveSubscription,
			wantMsg:    models.MessageInactive,
		},
		{
			name:       "unknown user",
			userID:     "missing",
			classID:    memory.ClassNYCYoga,
			wantReason: models.ReasonUserNotFound,
			wantMsg:    models.MessageUserNotFound,
		},
		{
			name:       "unknown user and class reports user first",
			userID:     "missing",
			classID:    "missing",
			wantReason: models.ReasonUserNotFound,
			wantMsg:    models.MessageUserNotFound,
		},
		{
			name:       "unknown class",
			userID:     memory.UserAlice,
			classID:    "class-missing",
			wantReason: models.ReasonClassNotFound,
			wantMsg:    "Class not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newSeededService()
			ctx := context.Background()
			if tt.checkedIn != "" {
				_, err := store.SetCheckedInClub(ctx, tt.userID, tt.checkedIn)
				require.NoError(t, err)
			}
			before, err := store.ListUsers(ctx)
			require.NoError(t, err)

			out := svc.CheckInClass(ctx, tt.userID, tt.classID)

			assert.Equal(t, tt.wantOK, out.Success)
			assert.Equal(t, tt.wantReason, out.Reason)
			assert.Equal(t, tt.wantPath, out.AccessPath)
			assert.Equal(t, tt.wantMsg, out.Message)

			after, err := store.ListUsers(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after, "class check-in must not change state")
		})
	}
}

func TestInactiveSubscriptionAlwaysFails(t *testing.T) {
	ctx := context.Background()
	memberships := []models.MembershipType{
		models.MembershipAllAccess, models.MembershipSingleClub, models.MembershipClassAccess,
	}
	for _, mt := range memberships {
		store := memory.New(
			[]models.User{{
				UserID:             "u",
				MembershipType:     mt,
				SubscriptionStatus: models.SubscriptionInactive,
				HomeClubID:         models.StringPtr(memory.ClubLA),
				CheckedInClubID:    models.StringPtr(memory.ClubLA),
			}},
			memory.SeedClubs(), memory.SeedClasses(),
		)
		svc := NewService(store, NewDelayVerifier(0), newNoopLogger())

		for _, club := range memory.SeedClubs() {
			out := svc.CheckInClub(ctx, "u", club.ClubID)
			assert.Equal(t, models.ReasonInactiveSubscription, out.Reason, "%s club %s", mt, club.ClubID)
		}
		for _, class := range memory.SeedClasses() {
			out := svc.CheckInClass(ctx, "u", class.ClassID)
			assert.Equal(t, models.ReasonInactiveSubscription, out.Reason, "%s class %s", mt, class.ClassID)
		}
	}
}

func TestScenario_SteveHomeClubThenClass(t *testing.T) {
	svc, _ := newSeededService()
	ctx := context.Background()

	out := svc.CheckInClass(ctx, memory.UserSteve, memory.ClassNYCYoga)
	assert.False(t, out.Success)
	assert.Equal(t, models.ReasonNoAccess, out.Reason)

	out = svc.CheckInClub(ctx, memory.UserSteve, memory.ClubHudsonYards)
	require.True(t, out.Success)

	out = svc.CheckInClass(ctx, memory.UserSteve, memory.ClassNYCYoga)
	assert.True(t, out.Success)
	assert.Equal(t, models.AccessPathClub, out.AccessPath)
}

func TestCheckInClub_SingleClubUsesStateCapturedBeforeVerification(t *testing.T) {
	ctx := context.Background()
	store := new(StoreMock)
	user := &models.User{
		UserID:             "u",
		MembershipType:     models.MembershipSingleClub,
		SubscriptionStatus: models.SubscriptionActive,
		HomeClubID:         models.StringPtr(memory.ClubHudsonYards),
	}
	store.On("FindUser", mock.Anything, "u").Return(user, nil).Once()

	// верификатор меняет домашний клуб во время ожидания
	verifier := verifierFunc(func(context.Context, string, string) error {
		user.HomeClubID = models.StringPtr(memory.ClubLA)
		return nil
	})
	svc := NewService(store, verifier, newNoopLogger())

	out := svc.CheckInClub(ctx, "u", memory.ClubLA)

	assert.False(t, out.Success)
	assert.Equal(t, models.ReasonWrongClub, out.Reason)
	store.AssertExpectations(t)
}

type verifierFunc func(ctx context.Context, userID, clubID string) error

func (f verifierFunc) Verify(ctx context.Context, userID, clubID string) error {
	return f(ctx, userID, clubID)
}

func TestCheckInClub_VerificationRunsOnlyForSingleClub(t *testing.T) {
	calls := 0
	verifier := verifierFunc(func(context.Context, string, string) error {
		calls++
		return nil
	})
	svc := NewService(memory.NewSeeded(), verifier, newNoopLogger())
	ctx := context.Background()

	svc.CheckInClub(ctx, memory.UserAlice, memory.ClubLA)
	svc.CheckInClub(ctx, memory.UserConnie, memory.ClubLA)
	assert.Equal(t, 0, calls)

	svc.CheckInClub(ctx, memory.UserSteve, memory.ClubLA)
	assert.Equal(t, 1, calls)
}

func TestCheckIn_InternalFaults(t *testing.T) {
	dbErr := errors.New("connection reset")
	active := &models.User{
		UserID:             "u",
		MembershipType:     models.MembershipAllAccess,
		SubscriptionStatus: models.SubscriptionActive,
	}

	tests := []struct {
		name  string
		setup func(s *StoreMock)
		call  func(svc *Service) models.CheckInOutcome
	}{
		{
			name: "club: user lookup fails",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Return(nil, dbErr)
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClub(context.Background(), "u", "c")
			},
		},
		{
			name: "club: write fails",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Return(active, nil)
				s.On("FindClub", mock.Anything, "c").Return(&models.Club{ClubID: "c"}, nil)
				s.On("SetCheckedInClub", mock.Anything, "u", "c").Return(nil, dbErr)
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClub(context.Background(), "u", "c")
			},
		},
		{
			name: "club: user vanished before write",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Return(active, nil)
				s.On("FindClub", mock.Anything, "c").Return(&models.Club{ClubID: "c"}, nil)
				s.On("SetCheckedInClub", mock.Anything, "u", "c").Return(nil, nil)
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClub(context.Background(), "u", "c")
			},
		},
		{
			name: "club: store panics",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Run(func(mock.Arguments) {
					panic("boom")
				})
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClub(context.Background(), "u", "c")
			},
		},
		{
			name: "class: class lookup fails",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Return(active, nil)
				s.On("FindClass", mock.Anything, "k").Return(nil, dbErr)
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClass(context.Background(), "u", "k")
			},
		},
		{
			name: "class: store panics",
			setup: func(s *StoreMock) {
				s.On("FindUser", mock.Anything, "u").Return(active, nil)
				s.On("FindClass", mock.Anything, "k").Run(func(mock.Arguments) {
					panic("boom")
				})
			},
			call: func(svc *Service) models.CheckInOutcome {
				return svc.CheckInClass(context.Background(), "u", "k")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(StoreMock)
			tt.setup(store)
			reporter := new(ReporterMock)
			reporter.On("Report", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Once()
			tracer := &recordingTracer{}

			svc := NewService(store, NewDelayVerifier(0), newNoopLogger(),
				WithErrorReporter(reporter), WithTracer(tracer))

			var out models.CheckInOutcome
			require.NotPanics(t, func() { out = tt.call(svc) })

			assert.False(t, out.Success)
			assert.Equal(t, models.ReasonError, out.Reason)
			assert.Equal(t, "Internal server error", out.Message)
			assert.Equal(t, OutcomeError, tracer.root().tags[TagOutcome])
			assert.True(t, tracer.root().finished)
			reporter.AssertExpectations(t)
		})
	}
}

func TestCheckInClub_VerifierCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(memory.NewSeeded(), NewDelayVerifier(time.Hour), newNoopLogger())

	out := svc.CheckInClub(ctx, memory.UserSteve, memory.ClubHudsonYards)

	assert.False(t, out.Success)
	assert.Equal(t, models.ReasonError, out.Reason)
}

func TestCheckIn_TracingTags(t *testing.T) {
	ctx := context.Background()

	t.Run("club wrong club", func(t *testing.T) {
		tracer := &recordingTracer{}
		svc, _ := newSeededService(WithTracer(tracer))

		svc.CheckInClub(ctx, memory.UserSteve, memory.ClubLA)

		root := tracer.root()
		assert.Equal(t, OpCheckInClub, root.op)
		assert.Equal(t, "SINGLE_CLUB", root.tags[TagMembershipType])
		assert.Equal(t, OutcomeFailed, root.tags[TagOutcome])
		assert.Equal(t, "wrong_club", root.tags[TagFailureReason])
		assert.Equal(t, []string{OpCheckInClub, OpQueryUser, OpVerifySubscription, OpVerifyLocation}, tracer.ops())
		for _, s := range tracer.spans {
			assert.True(t, s.finished, s.op)
		}
	})

	t.Run("class club access", func(t *testing.T) {
		tracer := &recordingTracer{}
		svc, store := newSeededService(WithTracer(tracer))
		_, err := store.SetCheckedInClub(ctx, memory.UserAlice, memory.ClubHudsonYards)
		require.NoError(t, err)

		svc.CheckInClass(ctx, memory.UserAlice, memory.ClassNYCYoga)

		root := tracer.root()
		assert.Equal(t, OpCheckInClass, root.op)
		assert.Equal(t, OutcomeSuccess, root.tags[TagOutcome])
		assert.Equal(t, "club_access", root.tags[TagAccessPath])
		assert.NotContains(t, root.tags, TagFailureReason)
		assert.Equal(t, []string{OpCheckInClass, OpQueryUserAndClass, OpVerifySubscription, OpVerifyAccessPath}, tracer.ops())
	})

	t.Run("user not found has no membership tag", func(t *testing.T) {
		tracer := &recordingTracer{}
		svc, _ := newSeededService(WithTracer(tracer))

		svc.CheckInClub(ctx, "missing", memory.ClubLA)

		assert.NotContains(t, tracer.root().tags, TagMembershipType)
		assert.Equal(t, "user_not_found", tracer.root().tags[TagFailureReason])
	})
}

func TestCheckIn_ObserversAndEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	recorder := new(RecorderMock)
	recorder.On("Record", models.KindClub, mock.MatchedBy(func(o models.CheckInOutcome) bool { return o.Success })).Once()
	recorder.On("Record", models.KindClass, mock.MatchedBy(func(o models.CheckInOutcome) bool {
		return !o.Success && o.Reason == models.ReasonNoAccess
	})).Once()
	recorder.On("Record", models.KindClass, mock.MatchedBy(func(o models.CheckInOutcome) bool { return o.Success })).Once()

	publisher := new(PublisherMock)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e models.CheckInEvent) bool {
		return e.Kind == models.KindClub && e.UserID == memory.UserSteve && e.TargetID == memory.ClubHudsonYards &&
			e.EventID != "" && e.OccurredAt.Equal(now)
	})).Return(nil).Once()
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e models.CheckInEvent) bool {
		return e.Kind == models.KindClass && e.TargetID == memory.ClassNYCYoga && e.AccessPath == models.AccessPathClub
	})).Return(errors.New("broker down")).Once()

	svc, _ := newSeededService(
		WithRecorder(recorder),
		WithEventPublisher(publisher),
		WithClock(func() time.Time { return now }),
	)

	assert.True(t, svc.CheckInClub(ctx, memory.UserSteve, memory.ClubHudsonYards).Success)
	assert.False(t, svc.CheckInClass(ctx, memory.UserSteve, memory.ClassLAHIIT).Success)
	// ошибка публикации не влияет на результат
	assert.True(t, svc.CheckInClass(ctx, memory.UserSteve, memory.ClassNYCYoga).Success)

	recorder.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestDelayVerifier(t *testing.T) {
	t.Run("concurrent calls wait independently", func(t *testing.T) {
		v := NewDelayVerifier(50 * time.Millisecond)
		start := time.Now()

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = v.Verify(context.Background(), "u", "c")
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		assert.Less(t, time.Since(start), 400*time.Millisecond)
	})

	t.Run("cancelled context", func(t *testing.T) {
		v := NewDelayVerifier(time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := v.Verify(ctx, "u", "c")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("negative delay is zero", func(t *testing.T) {
		v := NewDelayVerifier(-time.Second)
		assert.NoError(t, v.Verify(context.Background(), "u", "c"))
	})
}
