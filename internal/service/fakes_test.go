package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
)

// memFixture wires a case service against in-memory stores with a
// controllable clock.
type memFixture struct {
	cases    *memCaseStore
	ledger   *memLedgerStore
	journal  *memJournalStore
	sla      *memSLAStore
	users    *memUserStore
	evidence *memEvidenceStore
	notifier *captureNotifier
	clock    *fakeClock
	service  *CaseService
}

func newMemFixture() *memFixture {
	clock := &fakeClock{current: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	f := &memFixture{
		cases:    &memCaseStore{byID: map[string]*domain.Case{}, clock: clock},
		ledger:   &memLedgerStore{},
		journal:  &memJournalStore{},
		sla:      &memSLAStore{trackings: map[string]*domain.SLATracking{}},
		users:    &memUserStore{byID: map[string]*domain.User{}, buildings: map[string]string{}},
		evidence: &memEvidenceStore{},
		notifier: &captureNotifier{},
		clock:    clock,
	}
	f.sla.cases = f.cases
	stores := repository.Stores{
		Cases:   f.cases,
		Ledger:  f.ledger,
		Journal: f.journal,
		SLA:     f.sla,
		Users:   f.users,
	}
	f.service = NewCaseService(CaseDependencies{
		TxRunner:      &memTxRunner{stores: stores},
		CaseStore:     f.cases,
		LedgerStore:   f.ledger,
		JournalStore:  f.journal,
		UserStore:     f.users,
		EvidenceStore: f.evidence,
		Notifier:      f.notifier,
		Now:           clock.Now,
	})
	return f
}

func (f *memFixture) addUser(id, name string, role domain.Role) *domain.User {
	u := &domain.User{ID: id, Name: name, Email: strings.ToLower(name) + "@example.gov", Role: role, CreatedAt: f.clock.Now()}
	f.users.byID[id] = u
	f.users.order = append(f.users.order, id)
	return u
}

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

type memTxRunner struct {
	mu     sync.Mutex
	stores repository.Stores
}

// WithinTx serializes units of work, standing in for the row locks the
// real stores take.
func (r *memTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Stores) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, r.stores)
}

type memCaseStore struct {
	byID  map[string]*domain.Case
	order []string
	clock *fakeClock
}

func (s *memCaseStore) Create(_ context.Context, c *domain.Case) error {
	now := s.clock.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.byID[c.ID] = &cp
	s.order = append(s.order, c.ID)
	return nil
}

func (s *memCaseStore) get(id string) (*domain.Case, error) {
	c, ok := s.byID[id]
	if !ok || c.Deleted() {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (s *memCaseStore) GetByID(_ context.Context, id string) (*domain.Case, error) {
	return s.get(id)
}

func (s *memCaseStore) GetByNumber(_ context.Context, number string) (*domain.Case, error) {
	for _, c := range s.byID {
		if c.CaseNumber == number && !c.Deleted() {
			cp := *c
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *memCaseStore) GetForUpdate(_ context.Context, id string) (*domain.Case, error) {
	return s.get(id)
}

func (s *memCaseStore) Update(_ context.Context, c *domain.Case) error {
	stored, ok := s.byID[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Category = c.Category
	stored.Severity = c.Severity
	stored.Status = c.Status
	stored.Description = c.Description
	stored.BuildingID = c.BuildingID
	stored.DepartmentID = c.DepartmentID
	stored.IsEscalated = c.IsEscalated
	stored.EscalatedAt = c.EscalatedAt
	stored.EscalationReason = c.EscalationReason
	stored.UpdatedAt = s.clock.Now()
	return nil
}

func (s *memCaseStore) SoftDelete(_ context.Context, id string, at time.Time) (*domain.Case, error) {
	stored, ok := s.byID[id]
	if !ok || stored.Deleted() {
		return nil, pgx.ErrNoRows
	}
	deletedAt := at
	stored.DeletedAt = &deletedAt
	stored.UpdatedAt = s.clock.Now()
	cp := *stored
	return &cp, nil
}

func (s *memCaseStore) List(_ context.Context, filter repository.CaseFilter) ([]domain.Case, int64, error) {
	matched := make([]domain.Case, 0)
	for _, id := range s.order {
		c := s.byID[id]
		if c.Deleted() {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if filter.BuildingID != nil && c.BuildingID != *filter.BuildingID {
			continue
		}
		if filter.ReportedByID != nil && c.ReportedByID != *filter.ReportedByID {
			continue
		}
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.Severity != nil && !strings.EqualFold(c.Severity, *filter.Severity) {
			continue
		}
		if filter.Category != nil && !strings.EqualFold(c.Category, *filter.Category) {
			continue
		}
		if filter.IsEscalated != nil && c.IsEscalated != *filter.IsEscalated {
			continue
		}
		matched = append(matched, *c)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))

	take := filter.Take
	if take <= 0 {
		take = 50
	}
	skip := filter.Skip
	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + take
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (s *memCaseStore) CountByTypeStatus(_ context.Context, caseType domain.CaseType, statuses []domain.CaseStatus) (int64, error) {
	var total int64
	for _, c := range s.byID {
		if c.Deleted() || c.Type != caseType {
			continue
		}
		if len(statuses) == 0 {
			total++
			continue
		}
		for _, status := range statuses {
			if c.Status == status {
				total++
				break
			}
		}
	}
	return total, nil
}

func (s *memCaseStore) Categories(_ context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	for _, c := range s.byID {
		if !c.Deleted() {
			seen[c.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories, nil
}

type memLedgerStore struct {
	records []domain.AssignmentRecord
	seq     int64
	failErr error
}

func (s *memLedgerStore) Append(_ context.Context, record *domain.AssignmentRecord) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.seq++
	record.Seq = s.seq
	s.records = append(s.records, *record)
	return nil
}

func (s *memLedgerStore) Latest(_ context.Context, caseID string) (*domain.AssignmentRecord, error) {
	var latest *domain.AssignmentRecord
	for i := range s.records {
		r := &s.records[i]
		if r.CaseID != caseID {
			continue
		}
		if latest == nil || r.AssignedAt.After(latest.AssignedAt) ||
			(r.AssignedAt.Equal(latest.AssignedAt) && r.Seq > latest.Seq) {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *memLedgerStore) ListByCase(_ context.Context, caseID string) ([]domain.AssignmentRecord, error) {
	result := make([]domain.AssignmentRecord, 0)
	for _, r := range s.records {
		if r.CaseID == caseID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AssignedAt.Equal(result[j].AssignedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}

type memJournalStore struct {
	entries []domain.ActivityLogEntry
}

func (s *memJournalStore) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memJournalStore) ListByCase(_ context.Context, caseID string) ([]domain.ActivityLogEntry, error) {
	result := make([]domain.ActivityLogEntry, 0)
	for _, entry := range s.entries {
		if entry.CaseID == caseID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type memSLAStore struct {
	rules     []domain.SLARule
	trackings map[string]*domain.SLATracking
	rows      []repository.TrackedCaseRow
	cases     *memCaseStore
	sweepNow  []time.Time
}

func (s *memSLAStore) FindRule(_ context.Context, category, severity string) (*domain.SLARule, error) {
	for i := range s.rules {
		if s.rules[i].Category == category && s.rules[i].Severity == severity {
			cp := s.rules[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memSLAStore) CreateTracking(_ context.Context, tracking *domain.SLATracking) error {
	cp := *tracking
	s.trackings[tracking.CaseID] = &cp
	return nil
}

func (s *memSLAStore) GetTrackingByCase(_ context.Context, caseID string) (*domain.SLATracking, error) {
	tracking, ok := s.trackings[caseID]
	if !ok {
		return nil, nil
	}
	cp := *tracking
	return &cp, nil
}

// ListTracking mirrors the SQL view: rows whose case has been soft deleted
// drop out of the listing.
func (s *memSLAStore) ListTracking(_ context.Context) ([]repository.TrackedCaseRow, error) {
	rows := make([]repository.TrackedCaseRow, 0, len(s.rows))
	for _, row := range s.rows {
		if s.cases != nil {
			if c, ok := s.cases.byID[row.Tracking.CaseID]; ok && c.Deleted() {
				continue
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Tracking.ResolutionDueAt.Before(rows[j].Tracking.ResolutionDueAt)
	})
	return rows, nil
}

func (s *memSLAStore) SweepBreaches(_ context.Context, now time.Time) (int64, error) {
	s.sweepNow = append(s.sweepNow, now)
	var flagged int64
	for i := range s.rows {
		t := &s.rows[i].Tracking
		if !t.ResponseBreached && t.ResponseDueAt.Before(now) {
			t.ResponseBreached = true
			flagged++
		}
		if !t.ResolutionBreached && t.ResolutionDueAt.Before(now) {
			t.ResolutionBreached = true
			flagged++
		}
	}
	return flagged, nil
}

type memUserStore struct {
	byID      map[string]*domain.User
	order     []string
	buildings map[string]string
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *memUserStore) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	result := make([]domain.User, 0)
	for _, id := range s.order {
		if s.byID[id].Role == role {
			result = append(result, *s.byID[id])
		}
	}
	return result, nil
}

func (s *memUserStore) DefaultBuilding(_ context.Context, userID string) (*domain.Building, error) {
	id, ok := s.buildings[userID]
	if !ok || id == "" {
		return nil, nil
	}
	return &domain.Building{ID: id, Name: "Building " + id}, nil
}

type memEvidenceStore struct {
	refs     []domain.EvidenceRef
	comments []domain.CaseComment
}

func (s *memEvidenceStore) AddEvidence(_ context.Context, ref *domain.EvidenceRef) error {
	if ref.UploadedAt.IsZero() {
		ref.UploadedAt = time.Now()
	}
	s.refs = append(s.refs, *ref)
	return nil
}

func (s *memEvidenceStore) ListEvidence(_ context.Context, caseID string) ([]domain.EvidenceRef, error) {
	result := make([]domain.EvidenceRef, 0)
	for i := len(s.refs) - 1; i >= 0; i-- {
		if s.refs[i].CaseID == caseID {
			result = append(result, s.refs[i])
		}
	}
	return result, nil
}

func (s *memEvidenceStore) AddComment(_ context.Context, comment *domain.CaseComment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *memEvidenceStore) ListComments(_ context.Context, caseID string) ([]domain.CaseComment, error) {
	result := make([]domain.CaseComment, 0)
	for _, comment := range s.comments {
		if comment.CaseID == caseID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type sentNotice struct {
	UserID      string
	Title       string
	Message     string
	Module      string
	ReferenceID string
}

type captureNotifier struct {
	mu      sync.Mutex
	sent    []sentNotice
	failErr error
}

func (n *captureNotifier) Notify(_ context.Context, userID, title, message, module, referenceID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failErr != nil {
		return n.failErr
	}
	n.sent = append(n.sent, sentNotice{UserID: userID, Title: title, Message: message, Module: module, ReferenceID: referenceID})
	return nil
}

func (n *captureNotifier) forUser(userID string) []sentNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	result := make([]sentNotice, 0)
	for _, s := range n.sent {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	return result
}

type captureEvents struct {
	published []events.Event
}

func (c *captureEvents) Publish(_ context.Context, event events.Event) error {
	c.published = append(c.published, event)
	return nil
}

func (c *captureEvents) Subscribe(events.EventType, events.EventHandler) {}
