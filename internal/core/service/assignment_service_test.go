package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubAssignmentRepo struct {
	byID      map[string]*domain.Assignment
	seq       int
	createErr error // if set, Create returns this error
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{byID: make(map[string]*domain.Assignment)}
}

func (r *stubAssignmentRepo) Create(_ context.Context, a *domain.Assignment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	a.ID = fmt.Sprintf("asg_%d", r.seq)
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAssignmentRepo) FindByID(_ context.Context, id string) (*domain.Assignment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	clone := *a
	return &clone, nil
}

// ListBoard applies the same filters the real Mongo query would use.
func (r *stubAssignmentRepo) ListBoard(_ context.Context, writerID string, writerDomains []string) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range r.byID {
		if !a.OnBoard() || a.IsIneligible(writerID) {
			continue
		}
		if len(writerDomains) > 0 && a.Domain != "" {
			covered := false
			for _, d := range writerDomains {
				if d == a.Domain {
					covered = true
					break
				}
			}
			if !covered {
				continue
			}
		}
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubAssignmentRepo) List(_ context.Context, f ports.ListAssignmentsFilter) ([]*domain.Assignment, int64, error) {
	var matched []*domain.Assignment
	for _, a := range r.byID {
		if f.WriterID != "" && a.WriterID != f.WriterID {
			continue
		}
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		if f.Domain != "" && a.Domain != f.Domain {
			continue
		}
		clone := *a
		matched = append(matched, &clone)
	}
	return matched, int64(len(matched)), nil
}

// Claim mirrors the Mongo compare-and-swap: it matches only while the
// assignment is still unassigned, pending, and the writer is not denylisted.
func (r *stubAssignmentRepo) Claim(_ context.Context, id, writerID string, writerDeadline time.Time, rate, amount float64, pickedAt time.Time) (*domain.Assignment, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAssignmentNotFound
	}
	if !a.OnBoard() || a.IsIneligible(writerID) {
		return nil, domain.ErrAlreadyPicked
	}
	a.WriterID = writerID
	a.WriterDeadline = &writerDeadline
	a.RatePerWord = rate
	a.Amount = amount
	a.Status = domain.StatusInProgress
	a.PickedAt = &pickedAt
	clone := *a
	return &clone, nil
}

func (r *stubAssignmentRepo) Release(_ context.Context, id, writerID string) error {
	a, ok := r.byID[id]
	if !ok || a.WriterID != writerID {
		return domain.ErrAssignmentNotFound
	}
	a.WriterID = ""
	a.WriterDeadline = nil
	a.Status = domain.StatusPending
	a.PickedAt = nil
	a.IneligibleWriters = append(a.IneligibleWriters, writerID)
	return nil
}

func (r *stubAssignmentRepo) ListOverdue(_ context.Context, now time.Time) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range r.byID {
		if a.Status != domain.StatusInProgress || a.WriterDeadline == nil {
			continue
		}
		if a.WriterDeadline.Before(now) && a.Deadline.After(now) {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubAssignmentRepo) UpdateByWriter(_ context.Context, id string, patch ports.WriterPatch, submittedAt *time.Time) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.SubmittedAmount != nil {
		a.SubmittedAmount = *patch.SubmittedAmount
		a.AmountApproved = false
	}
	if submittedAt != nil {
		a.SubmittedAt = submittedAt
	}
	return nil
}

func (r *stubAssignmentRepo) UpdateByAdmin(_ context.Context, id string, patch ports.AdminPatch) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Amount != nil {
		a.Amount = *patch.Amount
	}
	if patch.Deadline != nil {
		a.Deadline = *patch.Deadline
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		a.PaymentStatus = *patch.PaymentStatus
	}
	return nil
}

func (r *stubAssignmentRepo) ApproveAmount(_ context.Context, id string, amount float64) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	a.Amount = amount
	a.SubmittedAmount = 0
	a.AmountApproved = true
	return nil
}

func (r *stubAssignmentRepo) SetWriterDeadline(_ context.Context, id string, deadline time.Time, clearExtension bool) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	a.WriterDeadline = &deadline
	if clearExtension {
		a.ExtensionRequested = false
		a.ExtensionReason = ""
	}
	return nil
}

func (r *stubAssignmentRepo) SetExtensionFlags(_ context.Context, id string, requested bool, reason string) error {
	a, ok := r.byID[id]
	if !ok {
		return domain.ErrAssignmentNotFound
	}
	a.ExtensionRequested = requested
	a.ExtensionReason = reason
	return nil
}

func (r *stubAssignmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrAssignmentNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubExtensionRepo struct {
	byID map[string]*domain.ExtensionRequest
	seq  int
}

func newStubExtensionRepo() *stubExtensionRepo {
	return &stubExtensionRepo{byID: make(map[string]*domain.ExtensionRequest)}
}

func (r *stubExtensionRepo) Create(_ context.Context, e *domain.ExtensionRequest) error {
	r.seq++
	e.ID = fmt.Sprintf("ext_%d", r.seq)
	clone := *e
	r.byID[e.ID] = &clone
	return nil
}

func (r *stubExtensionRepo) FindByID(_ context.Context, id string) (*domain.ExtensionRequest, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrExtensionNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubExtensionRepo) ListPending(_ context.Context) ([]*domain.ExtensionRequest, error) {
	var out []*domain.ExtensionRequest
	for _, e := range r.byID {
		if e.Status == domain.ExtensionPending {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubExtensionRepo) Resolve(_ context.Context, id string, status domain.ExtensionStatus, adminResponse string, at time.Time) error {
	e, ok := r.byID[id]
	if !ok {
		return domain.ErrExtensionNotFound
	}
	if e.Status != domain.ExtensionPending {
		return domain.ErrExtensionResolved
	}
	e.Status = status
	e.AdminResponse = adminResponse
	e.ResolvedAt = &at
	return nil
}

type stubUserRepo struct {
	byID map[string]*domain.User
	seq  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) seed(u *domain.User) *domain.User {
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("usr_%d", r.seq)
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	r.byID[u.ID] = u
	return u
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	return r.seed(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context, role string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if role != "" && u.Role != role {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) ListActiveWriters(_ context.Context, subjectDomain string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role != domain.RoleWriter || u.Status != domain.UserActive {
			continue
		}
		if !u.CoversDomain(subjectDomain) {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) ListAdmins(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.byID {
		if u.Role == domain.RoleAdmin && u.Status == domain.UserActive {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, patch ports.UserPatch) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Domains != nil {
		u.Domains = *patch.Domains
	}
	if patch.RatePerWord != nil {
		u.RatePerWord = *patch.RatePerWord
	}
	if patch.Status != nil {
		u.Status = *patch.Status
	}
	return nil
}

func (r *stubUserRepo) SetPassword(_ context.Context, id, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetPresence(_ context.Context, id string, online bool, seenAt time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Online = online
	u.LastSeen = &seenAt
	return nil
}

func (r *stubUserRepo) SetTelegramChat(_ context.Context, id, chatID string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TelegramChatID = chatID
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Status = domain.UserInactive
	return nil
}

// capturingNotifier records every notification handed to it.
type capturingNotifier struct {
	sent []ports.NotificationInput
}

func (n *capturingNotifier) Notify(inputs ...ports.NotificationInput) {
	n.sent = append(n.sent, inputs...)
}

func (n *capturingNotifier) sentTo(userID string) []ports.NotificationInput {
	var out []ports.NotificationInput
	for _, in := range n.sent {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type assignmentFixture struct {
	repo     *stubAssignmentRepo
	extRepo  *stubExtensionRepo
	userRepo *stubUserRepo
	notifier *capturingNotifier
	svc      *AssignmentService
}

func newAssignmentFixture() *assignmentFixture {
	f := &assignmentFixture{
		repo:     newStubAssignmentRepo(),
		extRepo:  newStubExtensionRepo(),
		userRepo: newStubUserRepo(),
		notifier: &capturingNotifier{},
	}
	f.svc = NewAssignmentService(f.repo, f.extRepo, f.userRepo, f.notifier, discardLogger)
	return f
}

func (f *assignmentFixture) seedWriter(id, domains string, rate float64) *domain.User {
	return f.userRepo.seed(&domain.User{
		ID:          id,
		Name:        "Writer " + id,
		Email:       id + "@example.com",
		Role:        domain.RoleWriter,
		Domains:     domains,
		RatePerWord: rate,
	})
}

func (f *assignmentFixture) seedAdmin(id string) *domain.User {
	return f.userRepo.seed(&domain.User{
		ID:    id,
		Name:  "Admin " + id,
		Email: id + "@example.com",
		Role:  domain.RoleAdmin,
	})
}

func (f *assignmentFixture) seedBoardAssignment(t *testing.T, subjectDomain string, deadline time.Time) *domain.Assignment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:        "Essay on " + subjectDomain,
		Domain:       subjectDomain,
		WordCountMin: 1000,
		WordCountMax: 2000,
		Deadline:     deadline,
	})
	if err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
	return a
}

func in(d time.Duration) time.Time { return time.Now().UTC().Add(d) }

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestAssignmentService_Create_Success(t *testing.T) {
	f := newAssignmentFixture()

	a, err := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:        "Macro economics essay",
		Domain:       "economics",
		WordCountMin: 1500,
		WordCountMax: 2000,
		Deadline:     in(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == "" {
		t.Error("expected an assigned ID")
	}
	if a.Status != domain.StatusPending {
		t.Errorf("expected status %q, got %q", domain.StatusPending, a.Status)
	}
	if a.PaymentStatus != domain.PaymentUnpaid {
		t.Errorf("expected payment status %q, got %q", domain.PaymentUnpaid, a.PaymentStatus)
	}
	if a.WriterID != "" {
		t.Error("new assignment must be unassigned")
	}
}

func TestAssignmentService_Create_RequiresTitle(t *testing.T) {
	f := newAssignmentFixture()

	_, err := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Deadline: in(48 * time.Hour),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAssignmentService_Create_RejectsPastDeadline(t *testing.T) {
	f := newAssignmentFixture()

	_, err := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:    "Late",
		Deadline: in(-time.Hour),
	})
	if !errors.Is(err, domain.ErrDeadlinePassed) {
		t.Errorf("expected ErrDeadlinePassed, got %v", err)
	}

	// A deadline inside the writer-deadline buffer is as good as passed:
	// no writer could commit to it.
	_, err = f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:    "Too tight",
		Deadline: in(10 * time.Minute),
	})
	if !errors.Is(err, domain.ErrDeadlinePassed) {
		t.Errorf("expected ErrDeadlinePassed for deadline inside buffer, got %v", err)
	}
}

func TestAssignmentService_Create_DefaultsWordCount(t *testing.T) {
	f := newAssignmentFixture()

	a, err := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:    "No word count given",
		Deadline: in(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.WordCountMin != 1000 || a.WordCountMax != 1000 {
		t.Errorf("expected default word count 1000/1000, got %d/%d", a.WordCountMin, a.WordCountMax)
	}

	b, _ := f.svc.Create(context.Background(), ports.CreateAssignmentInput{
		Title:        "Min only",
		WordCountMin: 500,
		Deadline:     in(48 * time.Hour),
	})
	if b.WordCountMax != 500 {
		t.Errorf("expected max to mirror min, got %d", b.WordCountMax)
	}
}

func TestAssignmentService_Create_NotifiesWritersInDomain(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w_econ", "economics", 0.02)
	f.seedWriter("w_law", "law", 0.02)
	f.seedWriter("w_any", "", 0.02) // no declared domains sees everything

	f.seedBoardAssignment(t, "economics", in(48*time.Hour))

	if got := len(f.notifier.sentTo("w_econ")); got != 1 {
		t.Errorf("economics writer: expected 1 notification, got %d", got)
	}
	if got := len(f.notifier.sentTo("w_law")); got != 0 {
		t.Errorf("law writer: expected 0 notifications, got %d", got)
	}
	if got := len(f.notifier.sentTo("w_any")); got != 1 {
		t.Errorf("domainless writer: expected 1 notification, got %d", got)
	}
}

// ---------------------------------------------------------------------------
// Pick tests
// ---------------------------------------------------------------------------

func TestAssignmentService_Pick_Success(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "economics", 0.05)
	f.seedAdmin("adm1")
	a := f.seedBoardAssignment(t, "economics", in(48*time.Hour))

	picked, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID:   a.ID,
		WriterID:       "w1",
		WriterDeadline: in(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if picked.WriterID != "w1" {
		t.Errorf("expected writer w1, got %q", picked.WriterID)
	}
	if picked.Status != domain.StatusInProgress {
		t.Errorf("expected status %q, got %q", domain.StatusInProgress, picked.Status)
	}
	// Amount derives from the writer's rate against the upper word count.
	if want := 2000 * 0.05; picked.Amount != want {
		t.Errorf("expected amount %.2f, got %.2f", want, picked.Amount)
	}
	if len(f.notifier.sentTo("adm1")) == 0 {
		t.Error("expected admins to be told about the pick")
	}
}

func TestAssignmentService_Pick_SecondWriterLoses(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	f.seedWriter("w2", "", 0.04)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))

	if _, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w1", WriterDeadline: in(24 * time.Hour),
	}); err != nil {
		t.Fatalf("first pick failed: %v", err)
	}

	_, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w2", WriterDeadline: in(24 * time.Hour),
	})
	if !errors.Is(err, domain.ErrAlreadyPicked) {
		t.Errorf("expected ErrAlreadyPicked for second pick, got %v", err)
	}

	stored := f.repo.byID[a.ID]
	if stored.WriterID != "w1" {
		t.Errorf("assignment must stay with the first writer, got %q", stored.WriterID)
	}
}

func TestAssignmentService_Pick_DenylistedWriterRejected(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	f.repo.byID[a.ID].IneligibleWriters = []string{"w1"}

	_, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w1", WriterDeadline: in(24 * time.Hour),
	})
	if !errors.Is(err, domain.ErrWriterIneligible) {
		t.Errorf("expected ErrWriterIneligible, got %v", err)
	}
}

func TestAssignmentService_Pick_DeadlineMustRespectBuffer(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))

	// Within 30 minutes of the client deadline.
	_, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w1", WriterDeadline: in(48*time.Hour - 10*time.Minute),
	})
	if !errors.Is(err, domain.ErrDeadlineTooLate) {
		t.Errorf("expected ErrDeadlineTooLate, got %v", err)
	}

	// In the past.
	_, err = f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w1", WriterDeadline: in(-time.Hour),
	})
	if !errors.Is(err, domain.ErrDeadlinePassed) {
		t.Errorf("expected ErrDeadlinePassed, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Visibility tests
// ---------------------------------------------------------------------------

func TestAssignmentService_Get_AdminSeesAll(t *testing.T) {
	f := newAssignmentFixture()
	admin := f.seedAdmin("adm1")
	a := f.seedBoardAssignment(t, "law", in(48*time.Hour))

	if _, err := f.svc.Get(context.Background(), a.ID, admin); err != nil {
		t.Fatalf("admin should see any assignment, got %v", err)
	}
}

func TestAssignmentService_Get_WriterSeesOwnAndBoard(t *testing.T) {
	f := newAssignmentFixture()
	econ := f.seedWriter("w_econ", "economics", 0.05)
	law := f.seedWriter("w_law", "law", 0.05)
	a := f.seedBoardAssignment(t, "economics", in(48*time.Hour))

	if _, err := f.svc.Get(context.Background(), a.ID, econ); err != nil {
		t.Errorf("covering writer should see board assignment, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, law); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-covering writer: expected ErrForbidden, got %v", err)
	}

	// Once picked by econ, the other writer still cannot see it, and the
	// owner still can.
	if _, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: econ.ID, WriterDeadline: in(24 * time.Hour),
	}); err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, econ); err != nil {
		t.Errorf("owner should see own assignment, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), a.ID, law); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner after pick, got %v", err)
	}
}

func TestAssignmentService_ListBoard_ExcludesDenylisted(t *testing.T) {
	f := newAssignmentFixture()
	w := f.seedWriter("w1", "economics", 0.05)
	a := f.seedBoardAssignment(t, "economics", in(48*time.Hour))
	b := f.seedBoardAssignment(t, "economics", in(72*time.Hour))
	f.repo.byID[a.ID].IneligibleWriters = []string{"w1"}

	board, err := f.svc.ListBoard(context.Background(), w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("expected 1 board item, got %d", len(board))
	}
	if board[0].ID != b.ID {
		t.Errorf("expected %q on the board, got %q", b.ID, board[0].ID)
	}
}

// ---------------------------------------------------------------------------
// Writer and admin update tests
// ---------------------------------------------------------------------------

func pickFor(t *testing.T, f *assignmentFixture, a *domain.Assignment, writerID string) {
	t.Helper()
	if _, err := f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: writerID, WriterDeadline: in(24 * time.Hour),
	}); err != nil {
		t.Fatalf("pick: %v", err)
	}
}

func TestAssignmentService_UpdateByWriter_OwnershipEnforced(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	f.seedWriter("w2", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	status := domain.StatusCompleted
	_, err := f.svc.UpdateByWriter(context.Background(), a.ID, "w2", ports.WriterPatch{Status: &status})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
}

func TestAssignmentService_UpdateByWriter_CompleteSetsSubmittedAt(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	f.seedAdmin("adm1")
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	status := domain.StatusCompleted
	updated, err := f.svc.UpdateByWriter(context.Background(), a.ID, "w1", ports.WriterPatch{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Errorf("expected status %q, got %q", domain.StatusCompleted, updated.Status)
	}
	if updated.SubmittedAt == nil {
		t.Error("completing must stamp SubmittedAt")
	}
	if len(f.notifier.sentTo("adm1")) == 0 {
		t.Error("expected admins to be told about the submission")
	}
}

func TestAssignmentService_UpdateByWriter_InvalidTransition(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	// in_progress cannot jump straight to paid.
	status := domain.StatusPaid
	_, err := f.svc.UpdateByWriter(context.Background(), a.ID, "w1", ports.WriterPatch{Status: &status})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssignmentService_UpdateByAdmin_ApprovesSubmittedAmount(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	f.seedAdmin("adm1")
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	proposed := 150.0
	if _, err := f.svc.UpdateByWriter(context.Background(), a.ID, "w1", ports.WriterPatch{SubmittedAmount: &proposed}); err != nil {
		t.Fatalf("propose amount: %v", err)
	}

	approve := true
	updated, err := f.svc.UpdateByAdmin(context.Background(), a.ID, ports.AdminPatch{AmountApproved: &approve})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Amount != 150.0 {
		t.Errorf("expected amount promoted to 150.00, got %.2f", updated.Amount)
	}
	if updated.SubmittedAmount != 0 {
		t.Errorf("expected proposal cleared, got %.2f", updated.SubmittedAmount)
	}
	if len(f.notifier.sentTo("w1")) == 0 {
		t.Error("expected the writer to be told the amount was approved")
	}
}

func TestAssignmentService_UpdateByAdmin_PaidNotifiesWriter(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	paid := domain.PaymentPaid
	if _, err := f.svc.UpdateByAdmin(context.Background(), a.ID, ports.AdminPatch{PaymentStatus: &paid}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := f.notifier.sentTo("w1")
	if len(sent) == 0 {
		t.Fatal("expected a payment notification for the writer")
	}
	if sent[len(sent)-1].Type != domain.NotifyPayment {
		t.Errorf("expected payment notification type, got %q", sent[len(sent)-1].Type)
	}
}

// ---------------------------------------------------------------------------
// Extension tests
// ---------------------------------------------------------------------------

func TestAssignmentService_RequestExtension_OwnershipAndFlags(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	f.seedWriter("w2", "", 0.05)
	f.seedAdmin("adm1")
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	_, err := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w2", RequestedDeadline: in(30 * time.Hour),
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	ext, err := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w1", RequestedDeadline: in(30 * time.Hour), Reason: "sick",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.Status != domain.ExtensionPending {
		t.Errorf("expected pending extension, got %q", ext.Status)
	}
	if !f.repo.byID[a.ID].ExtensionRequested {
		t.Error("assignment must be flagged while the request is pending")
	}
	if len(f.notifier.sentTo("adm1")) == 0 {
		t.Error("expected admins to be told about the request")
	}
}

func TestAssignmentService_RequestExtension_BeyondBufferRejected(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	_, err := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w1", RequestedDeadline: in(48 * time.Hour),
	})
	if !errors.Is(err, domain.ErrDeadlineTooLate) {
		t.Errorf("expected ErrDeadlineTooLate, got %v", err)
	}
}

func TestAssignmentService_RespondExtension_ApproveMovesDeadline(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	requested := in(30 * time.Hour)
	ext, err := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w1", RequestedDeadline: requested, Reason: "scope grew",
	})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	resolved, err := f.svc.RespondExtension(context.Background(), ports.ExtensionResponseInput{
		ExtensionID: ext.ID, Approve: true, AdminResponse: "ok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != domain.ExtensionApproved {
		t.Errorf("expected approved, got %q", resolved.Status)
	}

	stored := f.repo.byID[a.ID]
	if stored.WriterDeadline == nil || !stored.WriterDeadline.Equal(requested.UTC()) {
		t.Errorf("expected writer deadline moved to %v, got %v", requested, stored.WriterDeadline)
	}
	if stored.ExtensionRequested {
		t.Error("extension flag must be cleared after resolution")
	}
	if len(f.notifier.sentTo("w1")) == 0 {
		t.Error("expected the writer to be told the outcome")
	}
}

func TestAssignmentService_RespondExtension_RejectKeepsDeadline(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")
	before := *f.repo.byID[a.ID].WriterDeadline

	ext, _ := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w1", RequestedDeadline: in(30 * time.Hour),
	})

	resolved, err := f.svc.RespondExtension(context.Background(), ports.ExtensionResponseInput{
		ExtensionID: ext.ID, Approve: false, AdminResponse: "no",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != domain.ExtensionRejected {
		t.Errorf("expected rejected, got %q", resolved.Status)
	}

	stored := f.repo.byID[a.ID]
	if !stored.WriterDeadline.Equal(before) {
		t.Errorf("rejection must not move the deadline: want %v, got %v", before, stored.WriterDeadline)
	}
	if stored.ExtensionRequested {
		t.Error("extension flag must be cleared after rejection")
	}
}

func TestAssignmentService_RespondExtension_AlreadyResolved(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	ext, _ := f.svc.RequestExtension(context.Background(), ports.ExtensionRequestInput{
		AssignmentID: a.ID, WriterID: "w1", RequestedDeadline: in(30 * time.Hour),
	})
	if _, err := f.svc.RespondExtension(context.Background(), ports.ExtensionResponseInput{
		ExtensionID: ext.ID, Approve: false,
	}); err != nil {
		t.Fatalf("first response: %v", err)
	}

	_, err := f.svc.RespondExtension(context.Background(), ports.ExtensionResponseInput{
		ExtensionID: ext.ID, Approve: true,
	})
	if !errors.Is(err, domain.ErrExtensionResolved) {
		t.Errorf("expected ErrExtensionResolved on double response, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Overdue sweep tests
// ---------------------------------------------------------------------------

func TestAssignmentService_SweepOverdue_ReleasesAndDenylists(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	// Force the writer deadline into the past; client deadline still stands.
	past := in(-time.Hour)
	f.repo.byID[a.ID].WriterDeadline = &past

	result, err := f.svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Released != 1 {
		t.Fatalf("expected 1 release, got %d", result.Released)
	}
	if result.ReleasedIDs[0] != a.ID {
		t.Errorf("expected %q released, got %q", a.ID, result.ReleasedIDs[0])
	}

	stored := f.repo.byID[a.ID]
	if stored.WriterID != "" || stored.Status != domain.StatusPending {
		t.Errorf("expected assignment back on the board, got writer=%q status=%q", stored.WriterID, stored.Status)
	}
	if !stored.IsIneligible("w1") {
		t.Error("displaced writer must land on the denylist")
	}
	if len(f.notifier.sentTo("w1")) == 0 {
		t.Error("expected the forfeiting writer to be told")
	}

	// The forfeiting writer cannot re-pick.
	_, err = f.svc.Pick(context.Background(), ports.PickInput{
		AssignmentID: a.ID, WriterID: "w1", WriterDeadline: in(24 * time.Hour),
	})
	if !errors.Is(err, domain.ErrWriterIneligible) {
		t.Errorf("expected ErrWriterIneligible on re-pick, got %v", err)
	}
}

func TestAssignmentService_SweepOverdue_NothingOverdue(t *testing.T) {
	f := newAssignmentFixture()
	f.seedWriter("w1", "", 0.05)
	a := f.seedBoardAssignment(t, "", in(48*time.Hour))
	pickFor(t, f, a, "w1")

	result, err := f.svc.SweepOverdue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Released != 0 {
		t.Errorf("expected no releases, got %d", result.Released)
	}
}
