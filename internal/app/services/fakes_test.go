package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/yigit/internhub/internal/app/models"
	"github.com/yigit/internhub/internal/app/repositories"
	"github.com/yigit/internhub/internal/pkg/apperrors"
	"github.com/yigit/internhub/internal/pkg/auth"
	"github.com/yigit/internhub/internal/pkg/filestorage"
)

var errDB = errors.New("connection reset by peer")

type fakeUsers struct {
	mu    sync.Mutex
	users map[int64]*models.User
	next  int64
	calls []string
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[int64]*models.User{}, next: 100}
	for _, u := range users {
		cp := *u
		f.users[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	f.next++
	u.ID = f.next
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUsers) GetByAuthID(_ context.Context, authID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.AuthID == authID })
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) List(_ context.Context, _ repositories.UserListParams, _, _ uint64) ([]*models.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) ListIDsByRole(_ context.Context, role models.Role, activeOnly bool) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for _, u := range f.users {
		if u.Role == role && (!activeOnly || u.IsActive) {
			ids = append(ids, u.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateProfile")
	existing, ok := f.users[u.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	existing.Email, existing.FirstName, existing.LastName = u.Email, u.FirstName, u.LastName
	return nil
}

func (f *fakeUsers) SetActive(_ context.Context, id int64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetActive")
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (f *fakeUsers) SetRole(_ context.Context, id int64, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetRole")
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Delete")
	if _, ok := f.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) CountByRole(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, u := range f.users {
		out[string(u.Role)]++
	}
	return out, nil
}

type fakeTokens struct {
	mu      sync.Mutex
	tokens  map[string]*models.RefreshToken
	revoked []int64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (f *fakeTokens) GetValidToken(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	switch {
	case !ok:
		return nil, apperrors.ErrTokenNotFound
	case t.IsRevoked:
		return nil, apperrors.ErrTokenRevoked
	case time.Now().After(t.ExpiryDate):
		return nil, apperrors.ErrTokenExpired
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

func (f *fakeTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

type fakeInterns struct {
	mu      sync.Mutex
	interns map[int64]*models.Intern
	next    int64
	writes  int
}

func newFakeInterns(interns ...*models.Intern) *fakeInterns {
	f := &fakeInterns{interns: map[int64]*models.Intern{}, next: 100}
	for _, i := range interns {
		cp := *i
		f.interns[i.ID] = &cp
	}
	return f
}

func (f *fakeInterns) Create(_ context.Context, i *models.Intern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	for _, existing := range f.interns {
		if existing.UserID == i.UserID {
			return errors.New(`duplicate key value violates unique constraint "interns_user_id_key"`)
		}
	}
	f.next++
	i.ID = f.next
	cp := *i
	f.interns[i.ID] = &cp
	return nil
}

func (f *fakeInterns) GetByID(_ context.Context, id int64) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.interns[id]
	if !ok {
		return nil, apperrors.ErrInternNotFound
	}
	cp := *i
	return &cp, nil
}

func (f *fakeInterns) GetByUserID(_ context.Context, userID int64) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.interns {
		if i.UserID == userID {
			cp := *i
			return &cp, nil
		}
	}
	return nil, apperrors.ErrInternNotFound
}

func (f *fakeInterns) List(_ context.Context, params repositories.InternListParams, _, _ uint64) ([]*models.Intern, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Intern
	for _, i := range f.interns {
		if params.Scope.TutorID != nil && (i.TutorID == nil || *i.TutorID != *params.Scope.TutorID) {
			continue
		}
		if params.Scope.InternUserID != nil && i.UserID != *params.Scope.InternUserID {
			continue
		}
		out = append(out, i)
	}
	return out, int64(len(out)), nil
}

func (f *fakeInterns) Update(_ context.Context, i *models.Intern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if _, ok := f.interns[i.ID]; !ok {
		return apperrors.ErrInternNotFound
	}
	cp := *i
	f.interns[i.ID] = &cp
	return nil
}

func (f *fakeInterns) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if _, ok := f.interns[id]; !ok {
		return apperrors.ErrInternNotFound
	}
	delete(f.interns, id)
	return nil
}

func (f *fakeInterns) CountByStatus(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, i := range f.interns {
		out[string(i.Status)]++
	}
	return out, nil
}

type fakeRequests struct {
	mu       sync.Mutex
	requests map[int64]*models.Request
	next     int64
}

func newFakeRequests(reqs ...*models.Request) *fakeRequests {
	f := &fakeRequests{requests: map[int64]*models.Request{}, next: 100}
	for _, r := range reqs {
		cp := *r
		f.requests[r.ID] = &cp
	}
	return f
}

func (f *fakeRequests) Create(_ context.Context, r *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	r.ID = f.next
	cp := *r
	f.requests[r.ID] = &cp
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id int64) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, apperrors.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequests) List(_ context.Context, _ repositories.RequestListParams, _, _ uint64) ([]*models.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Request
	for _, r := range f.requests {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequests) UpdateContent(_ context.Context, r *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.requests[r.ID]
	if !ok {
		return apperrors.ErrRequestNotFound
	}
	existing.Type, existing.Title, existing.Description = r.Type, r.Title, r.Description
	return nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id int64, status models.RequestStatus, response *string, respondedBy int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return apperrors.ErrRequestNotFound
	}
	now := time.Now()
	r.Status = status
	r.Response = response
	r.RespondedBy = &respondedBy
	r.RespondedAt = &now
	return nil
}

func (f *fakeRequests) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requests[id]; !ok {
		return apperrors.ErrRequestNotFound
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeRequests) CountByStatus(_ context.Context) (map[string]int64, error) {
	return nil, errDB
}

type fakeNotifications struct {
	mu      sync.Mutex
	items   []*models.Notification
	failFor map[int64]bool
	next    int64
}

func (f *fakeNotifications) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[n.UserID] {
		return errDB
	}
	f.next++
	n.ID = f.next
	n.CreatedAt = time.Now()
	f.items = append(f.items, n)
	return nil
}

func (f *fakeNotifications) forUser(userID int64) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifications) ListForUser(_ context.Context, userID int64, unreadOnly bool, _, _ uint64) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range f.forUser(userID) {
		if !unreadOnly || !n.IsRead {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, userID int64) (int64, error) {
	_, n, err := f.ListForUser(ctx, userID, true, 0, 0)
	return n, err
}

func (f *fakeNotifications) MarkRead(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotifications) Delete(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.items {
		if n.ID == id && n.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotificationNotFound
}

type fakePusher struct {
	mu     sync.Mutex
	pushed []int64
}

func (f *fakePusher) Push(userID int64, _ string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, userID)
}

type fakeDocuments struct {
	mu   sync.Mutex
	docs map[int64]*models.Document
	next int64
	err  error
}

func newFakeDocuments(docs ...*models.Document) *fakeDocuments {
	f := &fakeDocuments{docs: map[int64]*models.Document{}, next: 100}
	for _, d := range docs {
		cp := *d
		f.docs[d.ID] = &cp
	}
	return f
}

func (f *fakeDocuments) Create(_ context.Context, d *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.next++
	d.ID = f.next
	cp := *d
	f.docs[d.ID] = &cp
	return nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id int64) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) List(_ context.Context, _ repositories.DocumentListParams, _, _ uint64) ([]*models.Document, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDocuments) SetVisibility(_ context.Context, id int64, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return apperrors.ErrDocumentNotFound
	}
	d.IsVisible = visible
	return nil
}

func (f *fakeDocuments) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return apperrors.ErrDocumentNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

var _ filestorage.ObjectStorage = (*memStorage)(nil)

func (m *memStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, filestorage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type fakeTemplates struct {
	templates map[int64]*models.DocumentTemplate
	next      int64
}

func newFakeTemplates(ts ...*models.DocumentTemplate) *fakeTemplates {
	f := &fakeTemplates{templates: map[int64]*models.DocumentTemplate{}, next: 100}
	for _, t := range ts {
		cp := *t
		f.templates[t.ID] = &cp
	}
	return f
}

func (f *fakeTemplates) Create(_ context.Context, t *models.DocumentTemplate) error {
	f.next++
	t.ID = f.next
	cp := *t
	f.templates[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id int64) (*models.DocumentTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, apperrors.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplates) GetDefaultByKind(_ context.Context, kind models.TemplateKind) (*models.DocumentTemplate, error) {
	var best *models.DocumentTemplate
	for _, t := range f.templates {
		if t.Kind == kind && (best == nil || t.ID < best.ID) {
			best = t
		}
	}
	if best == nil {
		return nil, apperrors.ErrTemplateNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *fakeTemplates) List(_ context.Context, kind *models.TemplateKind) ([]*models.DocumentTemplate, error) {
	var out []*models.DocumentTemplate
	for _, t := range f.templates {
		if kind == nil || t.Kind == *kind {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) Update(_ context.Context, t *models.DocumentTemplate) error {
	if _, ok := f.templates[t.ID]; !ok {
		return apperrors.ErrTemplateNotFound
	}
	cp := *t
	f.templates[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id int64) error {
	if _, ok := f.templates[id]; !ok {
		return apperrors.ErrTemplateNotFound
	}
	delete(f.templates, id)
	return nil
}

type fakeSettings map[string]string

func (f fakeSettings) List(_ context.Context) ([]*models.Setting, error) {
	out := make([]*models.Setting, 0, len(f))
	for k, v := range f {
		out = append(out, &models.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (f fakeSettings) Get(_ context.Context, key string) (*models.Setting, error) {
	v, ok := f[key]
	if !ok {
		return nil, apperrors.ErrSettingNotFound
	}
	return &models.Setting{Key: key, Value: v}, nil
}

func (f fakeSettings) Upsert(_ context.Context, key, value string) (*models.Setting, error) {
	f[key] = value
	return &models.Setting{Key: key, Value: value}, nil
}

type fakeIssuer struct {
	n int
}

func (f *fakeIssuer) GenerateTokenPair(user *models.User) (*auth.TokenPair, error) {
	f.n++
	return &auth.TokenPair{
		AccessToken:      "access-" + user.AuthID,
		RefreshToken:     "refresh-" + user.AuthID + "-" + string(rune('a'+f.n)),
		ExpiresIn:        900,
		RefreshExpiresIn: 3600,
		RefreshExpiresAt: time.Now().Add(time.Hour),
	}, nil
}
