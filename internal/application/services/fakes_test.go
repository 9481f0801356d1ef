package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"fileshare-api/internal/domain/shared_file"
	"fileshare-api/internal/domain/user"
	"fileshare-api/internal/infrastructure/mq"
	"fileshare-api/internal/infrastructure/scanner"
)

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_counters"}, []string{"result"})
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// FakeUserRepository is an in-memory user.Repository. The Func fields
// override individual methods.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[user.UUID]*user.User
	ids   map[user.ID]user.UUID

	FetchUserByEmailFunc func(ctx context.Context, email string) (*user.User, error)
	FetchUserByIDFunc    func(ctx context.Context, id user.UUID) (*user.User, error)
	CreateUserFunc       func(ctx context.Context, u user.User) (*user.User, error)
}

func newFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{
		users: map[user.UUID]*user.User{},
		ids:   map[user.ID]user.UUID{},
	}
}

func (f *FakeUserRepository) put(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.UUID] = u
	f.ids[user.ID(len(f.ids)+1)] = u.UUID
}

func cloneUser(u *user.User) *user.User {
	cp := *u
	cp.PrivateKeyMaterial = append([]byte(nil), u.PrivateKeyMaterial...)
	return &cp
}

func (f *FakeUserRepository) FetchUserByID(ctx context.Context, id user.UUID) (*user.User, error) {
	if f.FetchUserByIDFunc != nil {
		return f.FetchUserByIDFunc(ctx, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (f *FakeUserRepository) FetchUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.FetchUserByEmailFunc != nil {
		return f.FetchUserByEmailFunc(ctx, email)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.DeletedAt == nil {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *FakeUserRepository) FetchUsers(context.Context, int) (user.Users, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out user.Users
	for _, u := range f.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (f *FakeUserRepository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, req)
	}
	req.UUID = uuid.New()
	req.Role = "user"
	f.put(&req)
	return cloneUser(&req), nil
}

func (f *FakeUserRepository) UpdateUser(_ context.Context, req user.User) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[req.UUID]
	if !ok {
		return nil, nil
	}
	u.Name, u.Lastname, u.Phone = req.Name, req.Lastname, req.Phone
	return cloneUser(u), nil
}

func (f *FakeUserRepository) FetchInternalID(_ context.Context, id user.UUID) (user.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for internal, u := range f.ids {
		if u == id && f.users[u].DeletedAt == nil {
			return internal, nil
		}
	}
	return 0, errors.New("user not found")
}

func (f *FakeUserRepository) DeleteUser(_ context.Context, id user.ID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[f.ids[id]]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	now := time.Now()
	u.DeletedAt = &now
	u.PublicKey, u.PrivateKeyMaterial = "", nil
	return cloneUser(u), nil
}

func (f *FakeUserRepository) SetKeyPair(_ context.Context, id user.UUID, pemKey string, wrapped []byte, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.PublicKey != "" {
		return false, nil
	}
	u.PublicKey, u.PrivateKeyMaterial, u.KeyCreatedAt = pemKey, wrapped, &at
	return true, nil
}

// FakeSharedFileRepository keeps records in memory. rows emulates row
// locks: readers under LockForRead share it, writers take it exclusively.
type FakeSharedFileRepository struct {
	mu    sync.Mutex
	rows  sync.RWMutex
	files map[shared_file.ID]*shared_file.SharedFile

	CreateCalls int
	CreateErr   error
	FetchErrs   []error
}

func newFakeSharedFileRepository() *FakeSharedFileRepository {
	return &FakeSharedFileRepository{files: map[shared_file.ID]*shared_file.SharedFile{}}
}

func cloneFile(f *shared_file.SharedFile) *shared_file.SharedFile {
	cp := *f
	return &cp
}

func (r *FakeSharedFileRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}

func (r *FakeSharedFileRepository) get(id shared_file.ID) *shared_file.SharedFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.files[id]; ok {
		return cloneFile(f)
	}
	return nil
}

func (r *FakeSharedFileRepository) CreateSharedFile(_ context.Context, req *shared_file.SharedFile) (*shared_file.SharedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CreateCalls++
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	f := cloneFile(req)
	f.Status = shared_file.StatusActive
	r.files[f.ID] = f
	return cloneFile(f), nil
}

func (r *FakeSharedFileRepository) FetchSharedFile(_ context.Context, id shared_file.ID) (*shared_file.SharedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.FetchErrs) > 0 {
		err := r.FetchErrs[0]
		r.FetchErrs = r.FetchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if f, ok := r.files[id]; ok {
		return cloneFile(f), nil
	}
	return nil, nil
}

func (r *FakeSharedFileRepository) list(match func(f *shared_file.SharedFile) bool) shared_file.SharedFiles {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out shared_file.SharedFiles
	for _, f := range r.files {
		if match(f) {
			out = append(out, cloneFile(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *FakeSharedFileRepository) FetchRecipientFiles(_ context.Context, recipientID user.UUID, now time.Time, _ int) (shared_file.SharedFiles, error) {
	return r.list(func(f *shared_file.SharedFile) bool {
		return f.RecipientID == recipientID && !f.ExpiredAt(now)
	}), nil
}

func (r *FakeSharedFileRepository) FetchOwnerFiles(_ context.Context, ownerID user.UUID, _ int) (shared_file.SharedFiles, error) {
	return r.list(func(f *shared_file.SharedFile) bool { return f.OwnerID == ownerID }), nil
}

func (r *FakeSharedFileRepository) LockForRead(ctx context.Context, id shared_file.ID, fn func(ctx context.Context, f *shared_file.SharedFile) error) error {
	r.rows.RLock()
	defer r.rows.RUnlock()

	f := r.get(id)
	if f == nil {
		return shared_file.ErrNotFound
	}
	return fn(ctx, f)
}

func (r *FakeSharedFileRepository) MarkRetrieved(_ context.Context, id shared_file.ID, now time.Time, single bool) (bool, error) {
	r.rows.Lock()
	defer r.rows.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || !now.Before(f.ExpiresAt) {
		return false, nil
	}
	switch {
	case f.Status == shared_file.StatusActive:
	case f.Status == shared_file.StatusRetrieved && !single:
	default:
		return false, nil
	}
	f.Status = shared_file.StatusRetrieved
	f.RetrievalCount++
	f.RetrievedAt = &now
	return true, nil
}

func (r *FakeSharedFileRepository) MarkExpired(_ context.Context, now time.Time) (int64, error) {
	r.rows.Lock()
	defer r.rows.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, f := range r.files {
		if (f.Status == shared_file.StatusActive || f.Status == shared_file.StatusRetrieved) && !now.Before(f.ExpiresAt) {
			f.Status = shared_file.StatusExpired
			n++
		}
	}
	return n, nil
}

func (r *FakeSharedFileRepository) deleteWhere(match func(f *shared_file.SharedFile) bool) []shared_file.Purged {
	r.rows.Lock()
	defer r.rows.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []shared_file.Purged
	for id, f := range r.files {
		if match(f) {
			out = append(out, shared_file.Purged{ID: id, Bucket: f.Bucket, StorageKey: f.StorageKey})
			delete(r.files, id)
		}
	}
	return out
}

func (r *FakeSharedFileRepository) DeleteExpired(context.Context) ([]shared_file.Purged, error) {
	return r.deleteWhere(func(f *shared_file.SharedFile) bool { return f.Status == shared_file.StatusExpired }), nil
}

func (r *FakeSharedFileRepository) DeleteUserFiles(_ context.Context, userID user.UUID) ([]shared_file.Purged, error) {
	return r.deleteWhere(func(f *shared_file.SharedFile) bool {
		return f.OwnerID == userID || f.RecipientID == userID
	}), nil
}

type FakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	PutErr    error
	DeleteErr error
	OnGet     func()
}

func newFakeBlobStore() *FakeBlobStore { return &FakeBlobStore{objects: map[string][]byte{}} }

func (b *FakeBlobStore) PutObject(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PutErr != nil {
		return b.PutErr
	}
	b.objects[key] = append([]byte(nil), data...)
	return nil
}

func (b *FakeBlobStore) GetObject(_ context.Context, key string) ([]byte, error) {
	if b.OnGet != nil {
		b.OnGet()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return append([]byte(nil), data...), nil
}

func (b *FakeBlobStore) DeleteObject(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.DeleteErr != nil {
		return b.DeleteErr
	}
	delete(b.objects, key)
	return nil
}

func (b *FakeBlobStore) GetBucket() string { return "shared-files" }

func (b *FakeBlobStore) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

func (b *FakeBlobStore) tamper(key string, idx int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key][idx] ^= 0x01
}

type FakeScanner struct {
	ScanFunc func(ctx context.Context, data []byte) (scanner.Verdict, error)
}

func (f *FakeScanner) Scan(ctx context.Context, data []byte) (scanner.Verdict, error) {
	if f.ScanFunc == nil {
		return scanner.Verdict{}, errors.New("not used")
	}
	return f.ScanFunc(ctx, data)
}

type FakePublisher struct {
	mu     sync.Mutex
	Events []mq.Event
}

func (p *FakePublisher) Publish(e mq.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, e)
}

func (p *FakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Action)
	}
	return out
}

// fileHeader builds a parsed multipart file part the way gin hands it over.
func fileHeader(t *testing.T, name, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	require.Len(t, form.File["file"], 1)

	return form.File["file"][0]
}
