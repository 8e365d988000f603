package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/core/domain"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const defaultWordCount = 1000

// AssignmentService implements the assignment lifecycle: job-board intake,
// pick (claim), writer/admin updates, extension negotiation, deadline
// override, and the overdue sweep. Notification fan-out is fire-and-forget;
// a failed delivery never rolls back the preceding write.
type AssignmentService struct {
	repo     ports.AssignmentRepository
	extRepo  ports.ExtensionRepository
	userRepo ports.UserRepository
	notifier ports.Notifier
	logger   zerolog.Logger
}

func NewAssignmentService(
	repo ports.AssignmentRepository,
	extRepo ports.ExtensionRepository,
	userRepo ports.UserRepository,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *AssignmentService {
	return &AssignmentService{
		repo:     repo,
		extRepo:  extRepo,
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// Create inserts a new assignment on the job board and notifies every active
// writer covering its domain.
func (s *AssignmentService) Create(ctx context.Context, input ports.CreateAssignmentInput) (*domain.Assignment, error) {
	now := time.Now().UTC()
	if input.Title == "" {
		return nil, fmt.Errorf("create assignment: %w: title is required", domain.ErrValidation)
	}
	if !input.Deadline.After(now.Add(domain.WriterDeadlineBuffer)) {
		return nil, fmt.Errorf("create assignment: %w", domain.ErrDeadlinePassed)
	}

	wcMin, wcMax := input.WordCountMin, input.WordCountMax
	if wcMax <= 0 && wcMin <= 0 {
		wcMin, wcMax = defaultWordCount, defaultWordCount
	} else if wcMax <= 0 {
		wcMax = wcMin
	} else if wcMin <= 0 {
		wcMin = wcMax
	}

	a := &domain.Assignment{
		Title:         input.Title,
		Description:   input.Description,
		Domain:        input.Domain,
		WordCountMin:  wcMin,
		WordCountMax:  wcMax,
		Amount:        input.Amount,
		Deadline:      input.Deadline.UTC(),
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("title", input.Title).Msg("failed to create assignment")
		return nil, err
	}

	s.logger.Info().Str("assignment_id", a.ID).Str("domain", a.Domain).Msg("assignment created")
	s.notifyWriters(ctx, a.Domain, "New assignment available",
		fmt.Sprintf("%q is on the job board, due %s.", a.Title, a.Deadline.Format(time.RFC822)),
		"/assignments/"+a.ID)

	return a, nil
}

// Get enforces actor visibility: admins see everything, writers see their own
// assignments and whatever they could still pick off the board.
func (s *AssignmentService) Get(ctx context.Context, id string, actor *domain.User) (*domain.Assignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleAdmin {
		return a, nil
	}
	if a.WriterID == actor.ID {
		return a, nil
	}
	if a.OnBoard() && !a.IsIneligible(actor.ID) && actor.CoversDomain(a.Domain) {
		return a, nil
	}
	return nil, domain.ErrForbidden
}

// ListBoard returns the job board as seen by one writer: unassigned pending
// assignments in the writer's domains, minus anything they forfeited.
func (s *AssignmentService) ListBoard(ctx context.Context, writer *domain.User) ([]*domain.Assignment, error) {
	return s.repo.ListBoard(ctx, writer.ID, writer.DomainList())
}

func (s *AssignmentService) List(ctx context.Context, filter ports.ListAssignmentsFilter) ([]*domain.Assignment, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	return s.repo.List(ctx, filter)
}

// Pick claims an unassigned assignment for a writer. The claim is a
// compare-and-swap: the repository matches only while writer_id is still
// unset, so exactly one of two concurrent picks succeeds and the loser gets
// domain.ErrAlreadyPicked.
func (s *AssignmentService) Pick(ctx context.Context, input ports.PickInput) (*domain.Assignment, error) {
	now := time.Now().UTC()

	a, err := s.repo.FindByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, err
	}
	if !a.OnBoard() {
		return nil, domain.ErrAlreadyPicked
	}
	if a.IsIneligible(input.WriterID) {
		return nil, domain.ErrWriterIneligible
	}
	if err := a.ValidWriterDeadline(input.WriterDeadline, now); err != nil {
		return nil, fmt.Errorf("pick: %w", err)
	}

	writer, err := s.userRepo.FindByID(ctx, input.WriterID)
	if err != nil {
		return nil, err
	}

	amount := float64(a.WordCountMax) * writer.RatePerWord
	claimed, err := s.repo.Claim(ctx, a.ID, writer.ID, input.WriterDeadline.UTC(), writer.RatePerWord, amount, now)
	if err != nil {
		s.logger.Info().Err(err).Str("assignment_id", a.ID).Str("writer_id", writer.ID).Msg("pick lost the claim race")
		return nil, err
	}

	s.logger.Info().Str("assignment_id", a.ID).Str("writer_id", writer.ID).Msg("assignment picked")
	s.notifyAdmins(ctx, "Assignment picked",
		fmt.Sprintf("%s picked %q, committed to %s.", writer.Name, a.Title, input.WriterDeadline.Format(time.RFC822)),
		"/assignments/"+a.ID)

	return claimed, nil
}

// UpdateByWriter applies the restricted writer patch: status and proposed
// amount only. Ownership and transition validity are both enforced here.
func (s *AssignmentService) UpdateByWriter(ctx context.Context, id, writerID string, patch ports.WriterPatch) (*domain.Assignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.WriterID != writerID {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	var submittedAt *time.Time
	if patch.Status != nil && *patch.Status != a.Status {
		if !a.Status.CanTransitionTo(*patch.Status) {
			return nil, fmt.Errorf("update: %w (from %s to %s)", domain.ErrInvalidTransition, a.Status, *patch.Status)
		}
		if *patch.Status == domain.StatusCompleted {
			submittedAt = &now
		}
	}

	if err := s.repo.UpdateByWriter(ctx, id, patch, submittedAt); err != nil {
		return nil, err
	}

	if patch.SubmittedAmount != nil {
		s.notifyAdmins(ctx, "Amount proposed",
			fmt.Sprintf("Writer proposed %.2f for %q.", *patch.SubmittedAmount, a.Title),
			"/assignments/"+a.ID)
	}
	if patch.Status != nil && *patch.Status == domain.StatusCompleted {
		s.notifyAdmins(ctx, "Work submitted",
			fmt.Sprintf("%q was submitted for review.", a.Title),
			"/assignments/"+a.ID)
	}

	return s.repo.FindByID(ctx, id)
}

// UpdateByAdmin applies a free-form patch. Setting AmountApproved promotes
// the writer's submitted amount into the real amount and clears the proposal.
func (s *AssignmentService) UpdateByAdmin(ctx context.Context, id string, patch ports.AdminPatch) (*domain.Assignment, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && *patch.Status != a.Status && !a.Status.CanTransitionTo(*patch.Status) {
		return nil, fmt.Errorf("update: %w (from %s to %s)", domain.ErrInvalidTransition, a.Status, *patch.Status)
	}

	if patch.AmountApproved != nil && *patch.AmountApproved && a.SubmittedAmount > 0 {
		if err := s.repo.ApproveAmount(ctx, id, a.SubmittedAmount); err != nil {
			return nil, err
		}
		patch.AmountApproved = nil
		patch.Amount = nil
		if a.WriterID != "" {
			s.notifier.Notify(ports.NotificationInput{
				UserID:  a.WriterID,
				Title:   "Amount approved",
				Message: fmt.Sprintf("Your proposed amount of %.2f for %q was approved.", a.SubmittedAmount, a.Title),
				Type:    domain.NotifyAssignment,
				Link:    "/assignments/" + a.ID,
			})
		}
	}

	if err := s.repo.UpdateByAdmin(ctx, id, patch); err != nil {
		return nil, err
	}

	if patch.PaymentStatus != nil && *patch.PaymentStatus == domain.PaymentPaid && a.WriterID != "" {
		s.notifier.Notify(ports.NotificationInput{
			UserID:  a.WriterID,
			Title:   "Payment recorded",
			Message: fmt.Sprintf("%q was marked as paid.", a.Title),
			Type:    domain.NotifyPayment,
			Link:    "/assignments/" + a.ID,
		})
	}

	return s.repo.FindByID(ctx, id)
}

func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("assignment_id", id).Msg("assignment deleted")
	return nil
}

// RequestExtension records a writer's plea for a later writer deadline and
// flags the assignment until an admin responds.
func (s *AssignmentService) RequestExtension(ctx context.Context, input ports.ExtensionRequestInput) (*domain.ExtensionRequest, error) {
	now := time.Now().UTC()

	a, err := s.repo.FindByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, err
	}
	if a.WriterID != input.WriterID {
		return nil, domain.ErrForbidden
	}
	if err := a.ValidWriterDeadline(input.RequestedDeadline, now); err != nil {
		return nil, fmt.Errorf("request extension: %w", err)
	}

	ext := &domain.ExtensionRequest{
		AssignmentID:      a.ID,
		WriterID:          input.WriterID,
		RequestedDeadline: input.RequestedDeadline.UTC(),
		Reason:            input.Reason,
		Status:            domain.ExtensionPending,
		CreatedAt:         now,
	}
	if err := s.extRepo.Create(ctx, ext); err != nil {
		return nil, err
	}
	if err := s.repo.SetExtensionFlags(ctx, a.ID, true, input.Reason); err != nil {
		s.logger.Warn().Err(err).Str("assignment_id", a.ID).Msg("failed to flag extension on assignment")
	}

	s.notifyAdmins(ctx, "Extension requested",
		fmt.Sprintf("Writer asked to move the deadline for %q to %s.", a.Title, ext.RequestedDeadline.Format(time.RFC822)),
		"/assignments/"+a.ID)

	return ext, nil
}

// RespondExtension resolves a pending extension request. Approval copies the
// requested deadline onto the assignment; either way the extension flags are
// cleared and the writer is told.
func (s *AssignmentService) RespondExtension(ctx context.Context, input ports.ExtensionResponseInput) (*domain.ExtensionRequest, error) {
	ext, err := s.extRepo.FindByID(ctx, input.ExtensionID)
	if err != nil {
		return nil, err
	}
	if ext.Status != domain.ExtensionPending {
		return nil, domain.ErrExtensionResolved
	}

	a, err := s.repo.FindByID(ctx, ext.AssignmentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	status := domain.ExtensionRejected
	title := "Extension rejected"
	if input.Approve {
		if err := a.ValidWriterDeadline(ext.RequestedDeadline, now); err != nil {
			return nil, fmt.Errorf("respond extension: %w", err)
		}
		status = domain.ExtensionApproved
		title = "Extension approved"
	}

	if err := s.extRepo.Resolve(ctx, ext.ID, status, input.AdminResponse, now); err != nil {
		return nil, err
	}

	if input.Approve {
		if err := s.repo.SetWriterDeadline(ctx, a.ID, ext.RequestedDeadline, true); err != nil {
			return nil, err
		}
	} else if err := s.repo.SetExtensionFlags(ctx, a.ID, false, ""); err != nil {
		s.logger.Warn().Err(err).Str("assignment_id", a.ID).Msg("failed to clear extension flags")
	}

	s.notifier.Notify(ports.NotificationInput{
		UserID:  ext.WriterID,
		Title:   title,
		Message: fmt.Sprintf("Your extension request on %q was %s. %s", a.Title, status, input.AdminResponse),
		Type:    domain.NotifyExtension,
		Link:    "/assignments/" + a.ID,
	})

	ext.Status = status
	ext.AdminResponse = input.AdminResponse
	ext.ResolvedAt = &now
	return ext, nil
}

func (s *AssignmentService) ListPendingExtensions(ctx context.Context) ([]*domain.ExtensionRequest, error) {
	return s.extRepo.ListPending(ctx)
}

// OverrideWriterDeadline unconditionally sets the writer deadline, clearing
// any pending extension flags, and tells the writer.
func (s *AssignmentService) OverrideWriterDeadline(ctx context.Context, id string, deadline time.Time) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetWriterDeadline(ctx, id, deadline.UTC(), true); err != nil {
		return err
	}
	if a.WriterID != "" {
		s.notifier.Notify(ports.NotificationInput{
			UserID:  a.WriterID,
			Title:   "Deadline updated",
			Message: fmt.Sprintf("Your deadline for %q is now %s.", a.Title, deadline.Format(time.RFC822)),
			Type:    domain.NotifyAssignment,
			Link:    "/assignments/" + a.ID,
		})
	}
	return nil
}

// SweepOverdue releases every assignment whose writer deadline has passed
// while the client deadline still stands. The displaced writer lands on the
// denylist permanently and is told they cannot re-pick.
func (s *AssignmentService) SweepOverdue(ctx context.Context) (*ports.SweepResult, error) {
	now := time.Now().UTC()

	overdue, err := s.repo.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}

	result := &ports.SweepResult{}
	for _, a := range overdue {
		if err := s.repo.Release(ctx, a.ID, a.WriterID); err != nil {
			s.logger.Warn().Err(err).Str("assignment_id", a.ID).Msg("overdue release skipped")
			continue
		}
		result.Released++
		result.ReleasedIDs = append(result.ReleasedIDs, a.ID)

		s.logger.Info().Str("assignment_id", a.ID).Str("writer_id", a.WriterID).Msg("overdue assignment released")
		s.notifier.Notify(ports.NotificationInput{
			UserID:  a.WriterID,
			Title:   "Assignment forfeited",
			Message: fmt.Sprintf("The deadline for %q passed; it is back on the job board and you can no longer pick it.", a.Title),
			Type:    domain.NotifyAssignment,
		})
	}

	return result, nil
}

// notifyWriters fans one notification out to every active writer covering the
// subject domain (all writers when domain is empty).
func (s *AssignmentService) notifyWriters(ctx context.Context, subjectDomain, title, message, link string) {
	writers, err := s.userRepo.ListActiveWriters(ctx, subjectDomain)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve writers for notification")
		return
	}
	inputs := make([]ports.NotificationInput, 0, len(writers))
	for _, w := range writers {
		inputs = append(inputs, ports.NotificationInput{
			UserID:  w.ID,
			Title:   title,
			Message: message,
			Type:    domain.NotifyAssignment,
			Link:    link,
		})
	}
	s.notifier.Notify(inputs...)
}

func (s *AssignmentService) notifyAdmins(ctx context.Context, title, message, link string) {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve admins for notification")
		return
	}
	inputs := make([]ports.NotificationInput, 0, len(admins))
	for _, admin := range admins {
		inputs = append(inputs, ports.NotificationInput{
			UserID:  admin.ID,
			Title:   title,
			Message: message,
			Type:    domain.NotifyAssignment,
			Link:    link,
		})
	}
	s.notifier.Notify(inputs...)
}
