package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
	"github.com/HyperCol/taipo-fire-php-re/internal/repository"
	"github.com/HyperCol/taipo-fire-php-re/internal/store"
)

var (
	volunteer = &domain.SessionUser{UID: "u-vol", Email: "vol@example.com", Username: "vol"}
	admin     = &domain.SessionUser{UID: "u-admin", Email: "admin@example.com", Username: "admin", IsAdmin: true}
)

type failingStatusRepo struct{}

func (failingStatusRepo) ListBlock(context.Context, string) ([]domain.RoomStatus, error) {
	return nil, errors.New("db down")
}

func (failingStatusRepo) Upsert(context.Context, domain.RoomStatus) (time.Time, error) {
	return time.Time{}, errors.New("db down")
}

// countingStatusRepo counts ListBlock calls to observe cache hits.
type countingStatusRepo struct {
	*repository.MemoryStatusRepository
	lists int
}

func (r *countingStatusRepo) ListBlock(ctx context.Context, block string) ([]domain.RoomStatus, error) {
	r.lists++
	return r.MemoryStatusRepository.ListBlock(ctx, block)
}

// gatedStatusRepo takes its ListBlock snapshot, reports it on snapshotted,
// then holds the result until release is closed. Only the first call is gated.
type gatedStatusRepo struct {
	*repository.MemoryStatusRepository
	snapshotted chan struct{}
	release     chan struct{}
	once        sync.Once
}

func (r *gatedStatusRepo) ListBlock(ctx context.Context, block string) ([]domain.RoomStatus, error) {
	rows, err := r.MemoryStatusRepository.ListBlock(ctx, block)
	gated := false
	r.once.Do(func() { gated = true })
	if gated {
		close(r.snapshotted)
		<-r.release
	}
	return rows, err
}

// ============================================
// StatusService
// ============================================

func TestStatusService_UpsertThenFetch(t *testing.T) {
	svc := NewStatusService(repository.NewMemoryStatusRepository(), nil, 0, zap.NewNop())
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, volunteer, UpsertRequest{Block: "A", Floor: 5, Unit: 3, Status: "danger", Remark: " trapped "})
	require.NoError(t, err)
	assert.Equal(t, "danger", rec.Status)
	assert.Equal(t, "trapped", rec.Remark)
	assert.Equal(t, string(domain.SourceCitizen), rec.Source)
	assert.Equal(t, "vol", rec.UpdatedBy)
	assert.NotEmpty(t, rec.UpdatedAt)

	units, err := svc.FetchBlock(ctx, "A")
	require.NoError(t, err)
	require.Contains(t, units, "5_3")
	assert.Equal(t, "danger", units["5_3"].Status)

	other, err := svc.FetchBlock(ctx, "B")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStatusService_LastWriteWins(t *testing.T) {
	svc := NewStatusService(repository.NewMemoryStatusRepository(), nil, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, volunteer, UpsertRequest{Block: "C", Floor: 1, Unit: 1, Status: "danger", Remark: "smoke", SourceURL: "https://x"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, volunteer, UpsertRequest{Block: "C", Floor: 1, Unit: 1, Status: "safe"})
	require.NoError(t, err)

	units, err := svc.FetchBlock(ctx, "C")
	require.NoError(t, err)
	assert.Equal(t, domain.UnitRecord{
		Status:    "safe",
		Source:    "citizen",
		UpdatedAt: units["1_1"].UpdatedAt,
		UpdatedBy: "vol",
	}, units["1_1"])
}

func TestStatusService_EmptyStatusKeepsRecord(t *testing.T) {
	svc := NewStatusService(repository.NewMemoryStatusRepository(), nil, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, volunteer, UpsertRequest{Block: "D", Floor: 2, Unit: 2, Remark: "door locked"})
	require.NoError(t, err)

	units, err := svc.FetchBlock(ctx, "D")
	require.NoError(t, err)
	require.Contains(t, units, "2_2")
	assert.Empty(t, units["2_2"].Status)
	assert.Equal(t, "door locked", units["2_2"].Remark)
}

func TestStatusService_Validation(t *testing.T) {
	svc := NewStatusService(repository.NewMemoryStatusRepository(), nil, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, nil, UpsertRequest{Block: "A", Floor: 1, Unit: 1, Status: "safe"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	bad := []UpsertRequest{
		{Block: "Z", Floor: 1, Unit: 1},
		{Block: "A", Floor: 0, Unit: 1},
		{Block: "A", Floor: 36, Unit: 1},
		{Block: "A", Floor: 1, Unit: 9},
		{Block: "A", Floor: 1, Unit: 1, Status: "flooded"},
		{Block: "A", Floor: 1, Unit: 1, Status: "safe", Source: "rumour"},
	}
	for _, req := range bad {
		_, err := svc.Upsert(ctx, volunteer, req)
		assert.ErrorIs(t, err, ErrValidation, "%+v", req)
	}

	_, err = svc.FetchBlock(ctx, "I")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusService_StoreError(t *testing.T) {
	svc := NewStatusService(failingStatusRepo{}, nil, 0, zap.NewNop())
	ctx := context.Background()

	_, err := svc.FetchBlock(ctx, "A")
	assert.ErrorIs(t, err, ErrStore)

	_, err = svc.Upsert(ctx, volunteer, UpsertRequest{Block: "A", Floor: 1, Unit: 1, Status: "safe"})
	assert.ErrorIs(t, err, ErrStore)
}

func TestStatusService_CacheReadThroughAndInvalidate(t *testing.T) {
	repo := &countingStatusRepo{MemoryStatusRepository: repository.NewMemoryStatusRepository()}
	svc := NewStatusService(repo, store.NewMemoryKV(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.FetchBlock(ctx, "E")
	require.NoError(t, err)
	_, err = svc.FetchBlock(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lists, "second read served from cache")

	_, err = svc.Upsert(ctx, volunteer, UpsertRequest{Block: "E", Floor: 9, Unit: 4, Status: "mixed"})
	require.NoError(t, err)

	units, err := svc.FetchBlock(ctx, "E")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.lists, "write invalidated the block")
	assert.Equal(t, "mixed", units["9_4"].Status)
}

func TestStatusService_SlowReadDoesNotOverwriteNewerWrite(t *testing.T) {
	repo := &gatedStatusRepo{
		MemoryStatusRepository: repository.NewMemoryStatusRepository(),
		snapshotted:            make(chan struct{}),
		release:                make(chan struct{}),
	}
	svc := NewStatusService(repo, store.NewMemoryKV(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, volunteer, UpsertRequest{Block: "G", Floor: 10, Unit: 2, Status: "safe"})
	require.NoError(t, err)

	type result struct {
		units domain.BlockUnits
		err   error
	}
	slow := make(chan result, 1)
	go func() {
		units, err := svc.FetchBlock(ctx, "G")
		slow <- result{units, err}
	}()
	<-repo.snapshotted

	_, err = svc.Upsert(ctx, volunteer, UpsertRequest{Block: "G", Floor: 10, Unit: 2, Status: "danger"})
	require.NoError(t, err)

	close(repo.release)
	old := <-slow
	require.NoError(t, old.err)
	assert.Equal(t, "safe", old.units["10_2"].Status, "slow reader saw the pre-write snapshot")

	for i := 0; i < 2; i++ {
		units, err := svc.FetchBlock(ctx, "G")
		require.NoError(t, err)
		assert.Equal(t, "danger", units["10_2"].Status)
	}
}

func TestStatusService_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := &countingStatusRepo{MemoryStatusRepository: repository.NewMemoryStatusRepository()}
	svc := NewStatusService(repo, store.NewRedisKV(client), 10*time.Second, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, volunteer, UpsertRequest{Block: "F", Floor: 3, Unit: 3, Status: "missing"})
	require.NoError(t, err)

	_, err = svc.FetchBlock(ctx, "F")
	require.NoError(t, err)
	assert.True(t, mr.Exists(store.BlockUnitsKey("F", 1)))

	mr.FastForward(11 * time.Second)
	assert.False(t, mr.Exists(store.BlockUnitsKey("F", 1)))

	// unreachable cache degrades to the repository
	mr.Close()
	units, err := svc.FetchBlock(ctx, "F")
	require.NoError(t, err)
	assert.Equal(t, "missing", units["3_3"].Status)
}

// ============================================
// NewsService
// ============================================

func TestNewsService_AddListRemove(t *testing.T) {
	svc := NewNewsService(repository.NewMemoryNewsRepository(), 20, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Add(ctx, admin, NewsInput{Content: "Shelter at community hall"})
	require.NoError(t, err)
	second, err := svc.Add(ctx, admin, NewsInput{Content: "Water restored", Link: "https://example.com", LinkText: "notice"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	items, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, "admin", items[0].CreatedBy)

	require.NoError(t, svc.Remove(ctx, admin, first.ID))
	require.NoError(t, svc.Remove(ctx, admin, "no-such-id"))
	items, err = svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNewsService_Authorization(t *testing.T) {
	svc := NewNewsService(repository.NewMemoryNewsRepository(), 20, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, nil, NewsInput{Content: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Add(ctx, volunteer, NewsInput{Content: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.Remove(ctx, volunteer, "id"), ErrForbidden)

	_, err = svc.Add(ctx, admin, NewsInput{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, svc.Remove(ctx, admin, ""), ErrValidation)
}

func TestNewsService_ReplaceMovesToTop(t *testing.T) {
	svc := NewNewsService(repository.NewMemoryNewsRepository(), 20, zap.NewNop())
	ctx := context.Background()

	old, err := svc.Add(ctx, admin, NewsInput{Content: "Road closed"})
	require.NoError(t, err)
	newer, err := svc.Add(ctx, admin, NewsInput{Content: "Bus diverted"})
	require.NoError(t, err)

	edited, err := svc.Replace(ctx, admin, old.ID, NewsInput{Content: "Road reopened"})
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, edited.ID)
	assert.False(t, edited.CreatedAt.Before(newer.CreatedAt))

	items, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, edited.ID, items[0].ID)
	assert.Equal(t, "Road reopened", items[0].Content)
	assert.Equal(t, newer.ID, items[1].ID)

	// invalid edit leaves the original in place
	_, err = svc.Replace(ctx, admin, edited.ID, NewsInput{Content: ""})
	assert.ErrorIs(t, err, ErrValidation)
	items, err = svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNewsService_LimitClamp(t *testing.T) {
	svc := NewNewsService(repository.NewMemoryNewsRepository(), 20, zap.NewNop())
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		_, err := svc.Add(ctx, admin, NewsInput{Content: "item"})
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 20)

	items, err = svc.List(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, items, MaxNewsLimit)

	items, err = svc.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

// ============================================
// AuthService / sessions
// ============================================

func newTestAuth(t *testing.T, kv store.KV) (*AuthService, *KVSessionStore) {
	sessions := NewKVSessionStore(kv)
	svc := NewAuthService(repository.NewMemoryUsersRepository(), sessions, time.Hour, zap.NewNop())
	svc.hashCost = bcrypt.MinCost
	_, err := svc.EnsureUser(context.Background(), "Admin@Example.com", "s3cret", "admin", true)
	require.NoError(t, err)
	return svc, sessions
}

func TestAuthService_LoginCheckLogout(t *testing.T) {
	svc, _ := newTestAuth(t, store.NewMemoryKV())
	ctx := context.Background()

	sess, err := svc.Login(ctx, " admin@example.com ", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.True(t, sess.User.IsAdmin)
	assert.Equal(t, "admin@example.com", sess.User.Email)

	u, err := svc.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "admin", u.Username)

	require.NoError(t, svc.Logout(ctx, sess.Token))
	require.NoError(t, svc.Logout(ctx, sess.Token))
	u, err = svc.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _ := newTestAuth(t, store.NewMemoryKV())
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, errUnknown := svc.Login(ctx, "ghost@example.com", "s3cret")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, err.Error(), errUnknown.Error())

	_, err = svc.Login(ctx, "", "s3cret")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Login(ctx, "admin@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)

	u, err := svc.CurrentUser(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	kv := store.NewMemoryKV()
	svc, sessions := newTestAuth(t, kv)
	ctx := context.Background()

	clock := time.Date(2025, 11, 27, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }
	sessions.now = func() time.Time { return clock }

	sess, err := svc.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, clock.Add(time.Hour), sess.ExpiresAt)

	clock = clock.Add(2 * time.Hour)
	u, err := svc.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestKVSessionStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, sessions := newTestAuth(t, store.NewRedisKV(client))
	ctx := context.Background()

	sess, err := svc.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.True(t, mr.Exists(store.SessionKey(sess.Token)))
	assert.InDelta(t, time.Hour.Seconds(), mr.TTL(store.SessionKey(sess.Token)).Seconds(), 5)

	got, err := sessions.Get(ctx, sess.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.User, got.User)

	_, err = svc.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	n, err := sessions.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err = sessions.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("pw", hash))
	assert.False(t, CheckPasswordHash("other", hash))
	assert.False(t, CheckPasswordHash("pw", "not-a-hash"))
}
