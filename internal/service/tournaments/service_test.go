package tournaments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []domain.Notification
	toRole map[domain.Role][]domain.Notification
}

func (n *recordingNotifier) Send(_ context.Context, msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) SendToRole(_ context.Context, role domain.Role, msg domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.toRole == nil {
		n.toRole = map[domain.Role][]domain.Notification{}
	}
	n.toRole[role] = append(n.toRole[role], msg)
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
	n.toRole = nil
}

type fixture struct {
	store     *memory.Store
	clock     *fakeClock
	notifier  *recordingNotifier
	svc       *Service
	organizer domain.Caller
	player    domain.Caller
	admin     domain.Caller
}

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewStore(),
		clock:    &fakeClock{now: t0},
		notifier: &recordingNotifier{},
	}
	f.svc = New(f.store, f.clock, f.notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, u := range []struct {
		email string
		role  domain.Role
		dst   *domain.Caller
	}{
		{"org@example.com", domain.RoleOrganizer, &f.organizer},
		{"player@example.com", domain.RolePlayer, &f.player},
		{"admin@example.com", domain.RoleAdmin, &f.admin},
	} {
		usr := &domain.User{Name: u.email, Email: u.email, Role: u.role}
		require.NoError(t, f.store.Users().Create(context.Background(), usr))
		*u.dst = domain.Caller{UserID: usr.ID, Role: u.role}
	}

	return f
}

func summerOpen(max int) CreateInput {
	return CreateInput{
		Title:                "Summer Open",
		Location:             "Lahore",
		StartDate:            t0.Add(10 * 24 * time.Hour),
		RegistrationDeadline: t0.Add(7 * 24 * time.Hour),
		EntryFee:             5000,
		MaxParticipants:      max,
	}
}

// tournament creates an organizer's tournament and has the admin approve it.
func (f *fixture) tournament(t *testing.T, max int) *domain.Tournament {
	t.Helper()
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.organizer, summerOpen(max))
	require.NoError(t, err)

	tr, err = f.svc.ReviewTournament(ctx, f.admin, tr.ID, ActionApprove, "")
	require.NoError(t, err)
	f.notifier.reset()

	return tr
}

func regInput(email string) RegisterInput {
	return RegisterInput{Name: "Ali", Email: email, Phone: "0300"}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	valid := CreateInput{
		Title:                "Open",
		Location:             "x",
		StartDate:            t0.Add(48 * time.Hour),
		RegistrationDeadline: t0.Add(24 * time.Hour),
	}

	_, err := f.svc.Create(ctx, f.player, valid)
	require.ErrorIs(t, err, ErrForbidden)

	in := valid
	in.RegistrationDeadline = t0.Add(-time.Hour)
	_, err = f.svc.Create(ctx, f.organizer, in)
	require.ErrorIs(t, err, ErrDeadlinePassed)

	in = valid
	in.RegistrationDeadline = in.StartDate.Add(time.Hour)
	_, err = f.svc.Create(ctx, f.organizer, in)
	require.ErrorIs(t, err, ErrDeadlineAfterStart)

	in = valid
	in.RegistrationDeadline = in.StartDate
	tr, err := f.svc.Create(ctx, f.admin, in)
	require.NoError(t, err)
	assert.Equal(t, domain.SkillIntermediate, tr.SkillLevel)
	assert.True(t, tr.Approved, "admin tournaments need no review")

	got, err := f.svc.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Open", got.Title)

	_, err = f.svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)

	reg, err := f.svc.Register(ctx, f.player, tr.ID, regInput("Ali@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationPending, reg.Status)
	assert.Equal(t, domain.PaymentPending, reg.PaymentStatus)
	assert.Equal(t, int64(5000), reg.PaymentAmount)
	assert.Equal(t, "ali@example.com", reg.Email)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.organizer.UserID, f.notifier.sent[0].UserID)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("ali@example.com"))
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = f.svc.Register(ctx, f.player, 999, regInput("x@example.com"))
	require.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = f.svc.Register(ctx, f.player, tr.ID, RegisterInput{Name: "x", Email: "not-an-email", Phone: "1"})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.KindValidation, de.Kind)
}

func TestRegister_DuplicateOnFullTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 1)

	_, err := f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("A@example.com"))
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("b@example.com"))
	require.ErrorIs(t, err, ErrTournamentFull)
}

func TestRegister_Deadline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)

	f.clock.Set(tr.RegistrationDeadline)
	_, err := f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.NoError(t, err, "deadline itself is still open")

	f.clock.Set(tr.RegistrationDeadline.Add(time.Second))
	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("b@example.com"))
	require.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestRegister_Capacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 2)

	var regs []*domain.Registration
	for i := 0; i < 2; i++ {
		reg, err := f.svc.Register(ctx, f.player, tr.ID, regInput(fmt.Sprintf("p%d@example.com", i)))
		require.NoError(t, err)
		regs = append(regs, reg)
	}

	_, err := f.svc.Register(ctx, f.player, tr.ID, regInput("late@example.com"))
	require.ErrorIs(t, err, ErrTournamentFull)

	// a rejected registration frees its place
	_, err = f.svc.Review(ctx, f.organizer, regs[0].ID, ActionReject)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("late@example.com"))
	require.NoError(t, err)
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)

	reg, err := f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Review(ctx, f.player, reg.ID, ActionApprove)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Review(ctx, f.organizer, reg.ID, "maybe")
	require.ErrorIs(t, err, ErrInvalidAction)

	got, err := f.svc.Review(ctx, f.organizer, reg.ID, ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.RegistrationConfirmed, got.Status)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	_, err = f.svc.Review(ctx, f.admin, reg.ID, ActionReject)
	require.ErrorIs(t, err, ErrNotPending)

	list, err := f.svc.ListRegistrations(ctx, f.admin, tr.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.RegistrationConfirmed, list[0].Status)

	_, err = f.svc.ListRegistrations(ctx, f.player, tr.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAttachProof(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)

	reg, err := f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.NoError(t, err)

	_, err = f.svc.AttachProof(ctx, f.organizer, reg.ID, "https://proofs/1.png")
	require.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = f.svc.AttachProof(ctx, f.player, reg.ID, "")
	var de *domain.Error
	require.ErrorAs(t, err, &de)

	got, err := f.svc.AttachProof(ctx, f.player, reg.ID, "https://proofs/1.png")
	require.NoError(t, err)
	require.NotNil(t, got.PaymentProofURL)
	assert.Equal(t, "https://proofs/1.png", *got.PaymentProofURL)
	assert.Equal(t, domain.RegistrationPending, got.Status)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.tournament(t, 0)
	f.tournament(t, 0)

	pending, err := f.svc.Create(ctx, f.organizer, summerOpen(0))
	require.NoError(t, err)

	out, err := f.svc.List(ctx, domain.Caller{}, domain.TournamentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = f.svc.List(ctx, domain.Caller{}, domain.TournamentFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 2, "unapproved tournaments are hidden")

	notApproved := false
	out, err = f.svc.List(ctx, f.organizer, domain.TournamentFilter{Approved: &notApproved})
	require.NoError(t, err)
	assert.Len(t, out, 2, "filter is forced for non-admins")

	out, err = f.svc.List(ctx, f.admin, domain.TournamentFilter{Approved: &notApproved})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, pending.ID, out[0].ID)
}

func TestReviewTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tr, err := f.svc.Create(ctx, f.organizer, summerOpen(0))
	require.NoError(t, err)
	assert.False(t, tr.Approved)
	require.Len(t, f.notifier.toRole[domain.RoleAdmin], 1)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.ErrorIs(t, err, ErrNotApproved)

	_, err = f.svc.ReviewTournament(ctx, f.organizer, tr.ID, ActionApprove, "")
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ReviewTournament(ctx, f.admin, tr.ID, "maybe", "")
	require.ErrorIs(t, err, ErrInvalidAction)

	_, err = f.svc.ReviewTournament(ctx, f.admin, 999, ActionApprove, "")
	require.ErrorIs(t, err, ErrTournamentNotFound)

	got, err := f.svc.ReviewTournament(ctx, f.admin, tr.ID, ActionReject, "venue missing")
	require.NoError(t, err)
	assert.False(t, got.Approved)
	assert.Equal(t, "venue missing", got.RejectionReason)

	got, err = f.svc.ReviewTournament(ctx, f.admin, tr.ID, ActionApprove, "")
	require.NoError(t, err)
	assert.True(t, got.Approved)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, f.admin.UserID, *got.ApprovedBy)
	assert.Empty(t, got.RejectionReason)

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, f.organizer.UserID, f.notifier.sent[1].UserID)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)
	require.True(t, tr.Approved)

	in := summerOpen(8)
	in.Title = "Summer Open II"

	_, err := f.svc.Update(ctx, f.player, tr.ID, in)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Update(ctx, f.organizer, tr.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Summer Open II", got.Title)
	assert.False(t, got.Approved, "an organizer edit needs a new approval")
	assert.Nil(t, got.ApprovedBy)

	_, err = f.svc.Register(ctx, f.player, tr.ID, regInput("a@example.com"))
	require.ErrorIs(t, err, ErrNotApproved)

	got, err = f.svc.Update(ctx, f.admin, tr.ID, in)
	require.NoError(t, err)
	assert.False(t, got.Approved, "admin edits keep the approval state")

	stored, err := f.svc.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Open II", stored.Title)
	assert.Equal(t, 8, stored.MaxParticipants)
	assert.Equal(t, f.organizer.UserID, stored.OrganizerID)
}

func TestUpdate_Limits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.tournament(t, 0)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Register(ctx, f.player, tr.ID, regInput(fmt.Sprintf("p%d@example.com", i)))
		require.NoError(t, err)
	}

	_, err := f.svc.Update(ctx, f.organizer, tr.ID, summerOpen(1))
	require.ErrorIs(t, err, ErrBelowRegistered)

	_, err = f.svc.Update(ctx, f.organizer, 999, summerOpen(0))
	require.ErrorIs(t, err, ErrTournamentNotFound)

	in := summerOpen(0)
	in.RegistrationDeadline = tr.StartDate.Add(time.Hour)
	_, err = f.svc.Update(ctx, f.organizer, tr.ID, in)
	require.ErrorIs(t, err, ErrDeadlineAfterStart)

	f.clock.Set(tr.StartDate)
	in = CreateInput{
		Title:                "Late",
		Location:             "x",
		StartDate:            tr.StartDate.Add(48 * time.Hour),
		RegistrationDeadline: tr.StartDate.Add(24 * time.Hour),
	}
	_, err = f.svc.Update(ctx, f.organizer, tr.ID, in)
	require.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestNew_NilLogger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	admin := &domain.User{Name: "a", Email: "a@example.com", Role: domain.RoleAdmin}
	require.NoError(t, store.Users().Create(ctx, admin))

	svc := New(store, &fakeClock{now: t0}, nil, nil)

	assert.NotPanics(t, func() {
		tr, err := svc.Create(ctx, domain.Caller{UserID: admin.ID, Role: domain.RoleAdmin}, summerOpen(0))
		require.NoError(t, err)
		assert.True(t, tr.Approved)
	})
}
