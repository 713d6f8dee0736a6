package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/notify"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

// CaseService owns the incident lifecycle: status moves only through its
// operations, which also feed the assignment ledger, the activity journal,
// SLA tracking, and the notification dispatcher. Each public mutation runs
// as one transaction; notifications are collected during the unit and
// dispatched only after commit.
type CaseService struct {
	tx         repository.TxRunner
	cases      repository.CaseStore
	ledger     repository.LedgerStore
	journal    repository.JournalStore
	users      repository.UserStore
	evidence   repository.EvidenceStore
	notifier   notify.Dispatcher
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// CaseDependencies bundles collaborators for the case service.
type CaseDependencies struct {
	TxRunner      repository.TxRunner
	CaseStore     repository.CaseStore
	LedgerStore   repository.LedgerStore
	JournalStore  repository.JournalStore
	UserStore     repository.UserStore
	EvidenceStore repository.EvidenceStore
	Notifier      notify.Dispatcher
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewCaseService constructs the service.
func NewCaseService(deps CaseDependencies) *CaseService {
	svc := &CaseService{
		tx:         deps.TxRunner,
		cases:      deps.CaseStore,
		ledger:     deps.LedgerStore,
		journal:    deps.JournalStore,
		users:      deps.UserStore,
		evidence:   deps.EvidenceStore,
		notifier:   deps.Notifier,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateCaseInput describes case creation payload.
type CreateCaseInput struct {
	ID               string
	CaseNumber       string
	Type             domain.CaseType
	Category         string
	Severity         string
	Description      string
	BuildingID       string
	OccurredAt       *time.Time
	Location         *string
	Latitude         *float64
	Longitude        *float64
	ImmediateActions *string
	PeopleImpacted   int
}

// notice is a pending notification intent, dispatched after the enclosing
// transaction commits.
type notice struct {
	userID      string
	title       string
	message     string
	referenceID string
}

// Create registers a new case: initial status RAISED, first journal entry,
// SLA tracking when a rule matches, and a heads-up to every supervisor.
func (s *CaseService) Create(ctx context.Context, reporterID string, input CreateCaseInput) (*domain.Case, error) {
	c := &domain.Case{
		ID:               input.ID,
		CaseNumber:       strings.TrimSpace(input.CaseNumber),
		Type:             input.Type,
		Category:         strings.TrimSpace(input.Category),
		Severity:         strings.TrimSpace(input.Severity),
		Status:           domain.CaseStatusRaised,
		Description:      input.Description,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		ImmediateActions: input.ImmediateActions,
		PeopleImpacted:   input.PeopleImpacted,
		ReportedByID:     reporterID,
		BuildingID:       input.BuildingID,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CaseNumber == "" {
		c.CaseNumber = generateCaseNumber(s.now())
	}
	if c.Type == "" {
		c.Type = domain.CaseTypeIncident
	}
	if c.Category == "" {
		c.Category = "others"
	}
	if c.Severity == "" {
		c.Severity = "medium"
	}
	if input.OccurredAt != nil {
		c.OccurredAt = *input.OccurredAt
	} else {
		c.OccurredAt = s.now()
	}

	var pending []notice
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Stores) error {
		if c.BuildingID == "" {
			building, err := st.Users.DefaultBuilding(ctx, reporterID)
			if err != nil {
				return apperrors.MapError(err)
			}
			if building == nil {
				return apperrors.NewValidationError(
					"building is required: reporter has no associated building in their department", nil)
			}
			c.BuildingID = building.ID
		}

		if err := st.Cases.Create(ctx, c); err != nil {
			return apperrors.MapError(err)
		}

		if err := s.appendJournal(ctx, st, c.ID, domain.CaseStatusRaised, "Incident created", reporterID); err != nil {
			return err
		}

		supervisors, err := st.Users.ListByRole(ctx, domain.RoleSupervisor)
		if err != nil {
			return apperrors.MapError(err)
		}
		for _, sup := range supervisors {
			pending = append(pending, notice{
				userID:      sup.ID,
				title:       "New Case Reported",
				message:     fmt.Sprintf("Case %s has been reported and requires review.", c.CaseNumber),
				referenceID: c.ID,
			})
		}

		return s.initializeTracking(ctx, st, c)
	})
	if err != nil {
		return nil, err
	}

	s.dispatchNotices(ctx, pending)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseCreated,
		CaseID:  c.ID,
		ActorID: reporterID,
		Payload: events.CaseCreatedPayload{
			CaseNumber: c.CaseNumber,
			Category:   c.Category,
			Severity:   c.Severity,
			BuildingID: c.BuildingID,
			Type:       c.Type,
		},
	})
	return c, nil
}

// Assign appends a ledger record, moves the case to ASSIGNED and notifies
// the new assignee. The transition is unconditional: any prior status moves
// to ASSIGNED.
func (s *CaseService) Assign(ctx context.Context, caseID, assigneeID, actorID string) (*domain.Case, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.NewValidationError("assignedToId is required", nil)
	}

	var result *domain.Case
	var pending []notice
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Stores) error {
		c, err := s.lockCase(ctx, st, caseID)
		if err != nil {
			return err
		}

		assignee, err := st.Users.GetByID(ctx, assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
			}
			return apperrors.MapError(err)
		}

		if err := st.Ledger.Append(ctx, &domain.AssignmentRecord{
			ID:           uuid.NewString(),
			CaseID:       c.ID,
			AssignedToID: assigneeID,
			AssignedByID: actorID,
			AssignedAt:   s.now(),
		}); err != nil {
			return apperrors.MapError(err)
		}

		comment := fmt.Sprintf("Assigned to %s", assignee.Name)
		if err := s.appendJournal(ctx, st, c.ID, domain.CaseStatusAssigned, comment, actorID); err != nil {
			return err
		}

		c.Status = domain.CaseStatusAssigned
		if err := st.Cases.Update(ctx, c); err != nil {
			return apperrors.MapError(err)
		}

		pending = append(pending, notice{
			userID:      assigneeID,
			title:       "Case Assigned to You",
			message:     fmt.Sprintf("Case %s has been assigned to you for investigation.", c.CaseNumber),
			referenceID: c.ID,
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchNotices(ctx, pending)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseAssigned,
		CaseID:  caseID,
		ActorID: actorID,
		Payload: events.CaseAssignedPayload{AssignedToID: assigneeID, AssignedByID: actorID},
	})
	return result, nil
}

// UpdateStatus moves the case to the given status. The status must belong to
// the declared status set; unrecognized values are rejected rather than
// silently recorded against a fallback. When the case goes to UNDER_REVIEW
// the user who made the most recent assignment is notified.
func (s *CaseService) UpdateStatus(ctx context.Context, caseID, rawStatus, actorID string) (*domain.Case, error) {
	status, ok := domain.ParseCaseStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("unrecognized status", map[string]any{"status": rawStatus})
	}

	var result *domain.Case
	var oldStatus domain.CaseStatus
	var pending []notice
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Stores) error {
		c, err := s.lockCase(ctx, st, caseID)
		if err != nil {
			return err
		}
		oldStatus = c.Status

		comment := fmt.Sprintf("Status updated to %s", status)
		if err := s.appendJournal(ctx, st, c.ID, status, comment, actorID); err != nil {
			return err
		}

		c.Status = status
		if err := st.Cases.Update(ctx, c); err != nil {
			return apperrors.MapError(err)
		}

		if status == domain.CaseStatusUnderReview {
			latest, err := st.Ledger.Latest(ctx, c.ID)
			if err != nil {
				return apperrors.MapError(err)
			}
			if latest != nil {
				pending = append(pending, notice{
					userID:      latest.AssignedByID,
					title:       "Case Submitted for Review",
					message:     fmt.Sprintf("Case %s has been submitted back for your review.", c.CaseNumber),
					referenceID: c.ID,
				})
			}
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchNotices(ctx, pending)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseStatusChanged,
		CaseID:  caseID,
		ActorID: actorID,
		Payload: events.CaseStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
	})
	return result, nil
}

// Escalate hands the case to a peer with a recorded reason. The escalation
// flags are set once, a new ledger record is appended, and the journal
// carries an ASSIGNED entry naming the actor and the reason.
func (s *CaseService) Escalate(ctx context.Context, caseID, actorID, assigneeID, reason string) (*domain.Case, error) {
	if strings.TrimSpace(assigneeID) == "" {
		return nil, apperrors.NewValidationError("assignedToId is required", nil)
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("escalation reason is required", nil)
	}

	var result *domain.Case
	var pending []notice
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Stores) error {
		c, err := s.lockCase(ctx, st, caseID)
		if err != nil {
			return err
		}

		actorName := "Unknown"
		if actor, err := st.Users.GetByID(ctx, actorID); err == nil {
			actorName = actor.Name
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return apperrors.MapError(err)
		}

		escalatedAt := s.now()
		c.IsEscalated = true
		c.EscalatedAt = &escalatedAt
		c.EscalationReason = &reason
		if err := st.Cases.Update(ctx, c); err != nil {
			return apperrors.MapError(err)
		}

		if err := st.Ledger.Append(ctx, &domain.AssignmentRecord{
			ID:           uuid.NewString(),
			CaseID:       c.ID,
			AssignedToID: assigneeID,
			AssignedByID: actorID,
			AssignedAt:   escalatedAt,
		}); err != nil {
			return apperrors.MapError(err)
		}

		comment := fmt.Sprintf("Case escalated by %s: %s", actorName, reason)
		if err := s.appendJournal(ctx, st, c.ID, domain.CaseStatusAssigned, comment, actorID); err != nil {
			return err
		}

		pending = append(pending, notice{
			userID: assigneeID,
			title:  "Case Escalated to You",
			message: fmt.Sprintf("Case %s has been escalated to you by %s. Reason: %s",
				c.CaseNumber, actorName, reason),
			referenceID: c.ID,
		})
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchNotices(ctx, pending)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseEscalated,
		CaseID:  caseID,
		ActorID: actorID,
		Payload: events.CaseEscalatedPayload{AssignedToID: assigneeID, Reason: reason},
	})
	return result, nil
}

// Close journals the closure on behalf of the actor, then performs the
// status write as an actor-less internal change so the journal carries
// exactly one entry.
func (s *CaseService) Close(ctx context.Context, caseID, actorID string) (*domain.Case, error) {
	var result *domain.Case
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st repository.Stores) error {
		c, err := s.lockCase(ctx, st, caseID)
		if err != nil {
			return err
		}

		comment := "Closed by user " + actorID
		if err := s.appendJournal(ctx, st, c.ID, domain.CaseStatusClosed, comment, actorID); err != nil {
			return err
		}

		c.Status = domain.CaseStatusClosed
		if err := st.Cases.Update(ctx, c); err != nil {
			return apperrors.MapError(err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventCaseStatusChanged,
		CaseID:  caseID,
		ActorID: actorID,
		Payload: events.CaseStatusChangedPayload{NewStatus: domain.CaseStatusClosed, Comment: "closed"},
	})
	return result, nil
}

// SoftDelete marks the case deleted. Status is untouched and no journal
// entry is written; history stays behind for audit.
func (s *CaseService) SoftDelete(ctx context.Context, caseID string) (*domain.Case, error) {
	c, err := s.cases.SoftDelete(ctx, caseID, s.now())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventCaseDeleted,
		CaseID: caseID,
	})
	return c, nil
}

// lockCase loads the case under a row lock, serializing concurrent
// operations on the same case for the rest of the transaction.
func (s *CaseService) lockCase(ctx context.Context, st repository.Stores, caseID string) (*domain.Case, error) {
	c, err := st.Cases.GetForUpdate(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case_id": caseID})
		}
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

// appendJournal writes one activity entry. Changes without an attributable
// actor are skipped silently. The old status is read back from the persisted
// case immediately before the write, which keeps the per-case journal a
// connected chain; callers must append before persisting the new status.
func (s *CaseService) appendJournal(ctx context.Context, st repository.Stores, caseID string, newStatus domain.CaseStatus, comments, actorID string) error {
	if actorID == "" {
		return nil
	}
	current, err := st.Cases.GetByID(ctx, caseID)
	if err != nil {
		return apperrors.MapError(err)
	}
	entry := &domain.ActivityLogEntry{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		OldStatus: current.Status,
		NewStatus: newStatus,
		Comments:  comments,
		UserID:    actorID,
		ChangedAt: s.now(),
	}
	if err := st.Journal.Append(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// initializeTracking creates the SLA tracking row when a rule matches the
// case's (category, severity). No rule, no tracking; that is not an error.
func (s *CaseService) initializeTracking(ctx context.Context, st repository.Stores, c *domain.Case) error {
	rule, err := st.SLA.FindRule(ctx, c.Category, c.Severity)
	if err != nil {
		return apperrors.MapError(err)
	}
	if rule == nil {
		return nil
	}
	tracking := &domain.SLATracking{
		ID:              uuid.NewString(),
		CaseID:          c.ID,
		SLAID:           rule.ID,
		ResponseDueAt:   c.CreatedAt.Add(time.Duration(rule.ResponseMinutes) * time.Minute),
		ResolutionDueAt: c.CreatedAt.Add(time.Duration(rule.ResolutionMinutes) * time.Minute),
	}
	if err := st.SLA.CreateTracking(ctx, tracking); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *CaseService) dispatchNotices(ctx context.Context, pending []notice) {
	if s.notifier == nil {
		return
	}
	for _, n := range pending {
		if err := s.notifier.Notify(ctx, n.userID, n.title, n.message, "cases", n.referenceID); err != nil {
			s.logger.Warn("case notification failed",
				zap.String("user_id", n.userID),
				zap.String("title", n.title),
				zap.Error(err))
		}
	}
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// resolveCase accepts either the opaque id or the human-readable case number.
func (s *CaseService) resolveCase(ctx context.Context, idOrNumber string) (*domain.Case, error) {
	var c *domain.Case
	var err error
	if uuidPattern.MatchString(strings.ToLower(idOrNumber)) {
		c, err = s.cases.GetByID(ctx, idOrNumber)
	} else {
		c, err = s.cases.GetByNumber(ctx, idOrNumber)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"case": idOrNumber})
		}
		return nil, apperrors.MapError(err)
	}
	return c, nil
}

func generateCaseNumber(at time.Time) string {
	return fmt.Sprintf("INC-%d", at.UnixMilli())
}
