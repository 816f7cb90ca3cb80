package tests

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/config"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory repository stubs ────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || (u.Email != nil && *u.Email == username) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *stubUserRepo) ListSupervisors(_ context.Context, locationID *uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role != model.RoleSupervisor || !u.Active {
			continue
		}
		if locationID != nil && (u.LocationID == nil || *u.LocationID != *locationID) {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *stubUserRepo) ListEmployeesByLocation(_ context.Context, locationID uuid.UUID) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Role == model.RoleEmployee && u.Active && u.LocationID != nil && *u.LocationID == locationID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

type stubLocationRepo struct {
	mu        sync.Mutex
	locations map[uuid.UUID]*model.Location
}

func newStubLocationRepo() *stubLocationRepo {
	return &stubLocationRepo{locations: make(map[uuid.UUID]*model.Location)}
}

func (r *stubLocationRepo) Create(_ context.Context, l *model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.locations[l.ID] = l
	return nil
}

func (r *stubLocationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, nil
	}
	return l, nil
}

func (r *stubLocationRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.locations[id]
	return ok, nil
}

func (r *stubLocationRepo) List(_ context.Context) ([]model.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Location, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type stubTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*model.Task
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[uuid.UUID]*model.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *stubTaskRepo) ListByAssignee(_ context.Context, assigneeID uuid.UUID, dueOn *time.Time) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Task
	for _, t := range r.tasks {
		if t.AssigneeID != assigneeID {
			continue
		}
		if dueOn != nil {
			day := dueOn.Truncate(24 * time.Hour)
			if t.DueAt.Before(day) || !t.DueAt.Before(day.Add(24*time.Hour)) {
				continue
			}
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (r *stubTaskRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	return nil
}

func (r *stubTaskRepo) SetEvidenceSlot(_ context.Context, id uuid.UUID, slot repository.EvidenceSlot, ref *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	switch slot {
	case repository.SlotBefore:
		t.BeforeImage = ref
	case repository.SlotAfter:
		t.AfterImage = ref
	default:
		return fmt.Errorf("unknown evidence slot %q", slot)
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (r *stubTaskRepo) ClearProofImage(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	t.ProofImage = nil
	return nil
}

func (r *stubTaskRepo) AutoSubmitIfComplete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return false, nil
	}
	if t.Status == model.TaskPending && t.BeforeImage != nil && t.AfterImage != nil {
		t.Status = model.TaskSubmitted
		t.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) StatusCounts(_ context.Context, assigneeID uuid.UUID, since time.Time) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var approved, total int64
	for _, t := range r.tasks {
		if t.AssigneeID != assigneeID || t.DueAt.Before(since) {
			continue
		}
		total++
		if t.Status == model.TaskApproved {
			approved++
		}
	}
	return approved, total, nil
}

type stubEvaluationRepo struct {
	mu    sync.Mutex
	evals []*model.Evaluation
}

func newStubEvaluationRepo() *stubEvaluationRepo { return &stubEvaluationRepo{} }

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func (r *stubEvaluationRepo) Upsert(_ context.Context, e *model.Evaluation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.evals {
		if existing.SubjectID == e.SubjectID && sameMonth(existing.Date, e.Date) {
			existing.EvaluatorID = e.EvaluatorID
			existing.Date = e.Date
			existing.Scores = e.Scores
			existing.TotalScore = e.TotalScore
			existing.Notes = e.Notes
			existing.UpdatedAt = time.Now()
			*e = *existing
			return nil
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	r.evals = append(r.evals, &cp)
	return nil
}

func (r *stubEvaluationRepo) FindBySubjectMonth(_ context.Context, subjectID uuid.UUID, day time.Time) (*model.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.evals {
		if e.SubjectID == subjectID && sameMonth(e.Date, day) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubEvaluationRepo) LatestBySubject(_ context.Context, subjectID uuid.UUID) (*model.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Evaluation
	for _, e := range r.evals {
		if e.SubjectID != subjectID {
			continue
		}
		if latest == nil || e.Date.After(latest.Date) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *stubEvaluationRepo) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]model.Evaluation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Evaluation
	for _, e := range r.evals {
		if e.SubjectID == subjectID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *stubEvaluationRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evals)
}

type stubSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]repository.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]repository.Session)}
}

func (r *stubSessionRepo) Save(_ context.Context, token string, s repository.Session, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = s
	return nil
}

func (r *stubSessionRepo) Find(_ context.Context, token string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *stubSessionRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	return nil
}

// stubEvidenceStore keeps blobs in memory; key layout mirrors the disk store.
type stubEvidenceStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newStubEvidenceStore() *stubEvidenceStore {
	return &stubEvidenceStore{blobs: make(map[string][]byte)}
}

func (s *stubEvidenceStore) Put(r io.Reader, ext string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key := uuid.NewString() + ext
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return key, nil
}

func (s *stubEvidenceStore) Open(key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("evidence %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubEvidenceStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *stubEvidenceStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

// ── Shared helpers ────────────────────────────────────────────────────────────

func newTestCfg() *config.Config {
	return &config.Config{
		Env:               "test",
		SessionTTLHours:   12,
		EvidenceMaxSizeMB: 10,
	}
}

func strptr(s string) *string { return &s }

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	assert.NoError(t, err)
	return id
}

func addLocation(t *testing.T, repo *stubLocationRepo, name string) *model.Location {
	t.Helper()
	l := &model.Location{Name: name, Address: name + " street"}
	assert.NoError(t, repo.Create(context.Background(), l))
	return l
}

// addUser seeds one account; managerType is "" for non-managers and location
// may be nil for all-location regional managers.
func addUser(t *testing.T, repo *stubUserRepo, username, role, managerType string, location *model.Location, active bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	u := &model.User{
		Username:     username,
		FullName:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       active,
	}
	if managerType != "" {
		u.ManagerType = strptr(managerType)
	}
	if location != nil {
		u.LocationID = &location.ID
		u.Location = location
	}
	assert.NoError(t, repo.Create(context.Background(), u))
	return u
}
