package cache

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
)

type stubBackend struct {
	findByIDFn   func(ctx context.Context, id string) (*domain.Task, error)
	updateFn     func(ctx context.Context, task *domain.Task) error
	softDeleteFn func(ctx context.Context, id string, at time.Time) error
	closed       bool
}

func (s *stubBackend) Create(ctx context.Context, task *domain.Task) error {
	task.ID = "created"
	return nil
}

func (s *stubBackend) Update(ctx context.Context, task *domain.Task) error {
	if s.updateFn == nil {
		return stderrors.New("unexpected Update call")
	}
	return s.updateFn(ctx, task)
}

func (s *stubBackend) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if s.findByIDFn == nil {
		return nil, stderrors.New("unexpected FindByID call")
	}
	return s.findByIDFn(ctx, id)
}

func (s *stubBackend) FindByName(ctx context.Context, name string) (*domain.Task, error) {
	return &domain.Task{ID: "by-name", Name: name}, nil
}

func (s *stubBackend) FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error) {
	return &domain.TaskPage{Page: req.Page, Size: req.Size}, nil
}

func (s *stubBackend) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if s.softDeleteFn == nil {
		return stderrors.New("unexpected SoftDelete call")
	}
	return s.softDeleteFn(ctx, id, at)
}

func (s *stubBackend) Ping(ctx context.Context) error { return nil }

func (s *stubBackend) Close() error {
	s.closed = true
	return nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func sampleTask() *domain.Task {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	return &domain.Task{
		ID:          "8d0f4c1e-2b3a-4c5d-9e8f-7a6b5c4d3e2f",
		Name:        "Groceries",
		Description: "Milk",
		Status:      domain.StatusPending,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestFindByID_MissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	expected := sampleTask()

	var calls int
	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			calls++
			task := *expected
			return &task, nil
		},
	}, client, time.Minute, "test:", nil)

	first, err := cache.FindByID(ctx, expected.ID)
	require.NoError(t, err)
	assert.Equal(t, expected, first)
	assert.True(t, mr.Exists("test:task:"+expected.ID))

	second, err := cache.FindByID(ctx, expected.ID)
	require.NoError(t, err)
	assert.Equal(t, expected.Name, second.Name)
	assert.True(t, expected.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	_, err = cache.FindByID(ctx, expected.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entries are reloaded")
}

func TestFindByID_ErrorsAreNotCached(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()

	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			return nil, domain.TaskNotFound(id)
		},
	}, client, time.Minute, "", nil)

	_, err := cache.FindByID(ctx, "missing")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	assert.Empty(t, mr.Keys())
}

func TestFindByID_CollapsesConcurrentMisses(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return sampleTask(), nil
		},
	}, client, 0, "", nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.FindByID(ctx, "same")
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestUpdateAndDeleteEvict(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	task := sampleTask()

	backend := &stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			c := *task
			return &c, nil
		},
		updateFn:     func(ctx context.Context, _ *domain.Task) error { return nil },
		softDeleteFn: func(ctx context.Context, id string, at time.Time) error { return nil },
	}
	cache := New(backend, client, time.Minute, "", nil)

	_, err := cache.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("task:"+task.ID))

	require.NoError(t, cache.Update(ctx, task))
	assert.False(t, mr.Exists("task:"+task.ID))

	_, err = cache.FindByID(ctx, task.ID)
	require.NoError(t, err)
	require.NoError(t, cache.SoftDelete(ctx, task.ID, time.Now()))
	assert.False(t, mr.Exists("task:"+task.ID))
}

func TestFailedWriteKeepsEntry(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	task := sampleTask()
	require.NoError(t, mr.Set("task:"+task.ID, `{"id":"`+task.ID+`","name":"cached"}`))

	cache := New(&stubBackend{
		updateFn: func(ctx context.Context, updated *domain.Task) error { return domain.TaskNameTaken(updated.Name) },
	}, client, time.Minute, "", nil)

	err := cache.Update(ctx, task)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
	assert.True(t, mr.Exists("task:"+task.ID))
}

func TestCorruptEntryFallsBack(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	task := sampleTask()
	require.NoError(t, mr.Set("task:"+task.ID, "not json"))

	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) { return sampleTask(), nil },
	}, client, time.Minute, "", nil)

	got, err := cache.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
}

func TestRedisDownFallsBackAndLogs(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) { return sampleTask(), nil },
	}, client, time.Minute, "", logger)

	got, err := cache.FindByID(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, logrus.WarnLevel, hook.AllEntries()[0].Level)
}

func TestNilClientPassesThrough(t *testing.T) {
	var calls int
	backend := &stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			calls++
			return sampleTask(), nil
		},
	}
	cache := New(backend, nil, time.Minute, "", nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cache.FindByID(ctx, "x")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)

	task := &domain.Task{}
	require.NoError(t, cache.Create(ctx, task))
	assert.Equal(t, "created", task.ID)

	byName, err := cache.FindByName(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "by-name", byName.ID)

	page, err := cache.FindAll(ctx, domain.PageRequest{Page: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Size)

	assert.NoError(t, cache.Ping(ctx))
	assert.NoError(t, cache.Close())
	assert.True(t, backend.closed)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestFindByID_ReadOverlappingDeleteIsNotCached(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	id := sampleTask().ID

	var deleted atomic.Bool
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			if deleted.Load() {
				return nil, domain.TaskNotFound(id)
			}
			task := sampleTask()
			first := false
			once.Do(func() { first = true })
			if first {
				close(started)
				<-release
			}
			return task, nil
		},
		softDeleteFn: func(ctx context.Context, id string, at time.Time) error {
			deleted.Store(true)
			return nil
		},
	}
	cache := New(backend, client, time.Minute, "", nil)

	done := make(chan error, 1)
	go func() {
		_, err := cache.FindByID(ctx, id)
		done <- err
	}()

	<-started
	require.NoError(t, cache.SoftDelete(ctx, id, time.Now()))
	close(release)
	require.NoError(t, <-done, "the read began before the delete")

	assert.False(t, mr.Exists("task:"+id), "a row read before the delete must not be cached")
	_, err := cache.FindByID(ctx, id)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestFindByID_ReadOverlappingUpdateIsNotCached(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()
	id := sampleTask().ID

	var mu sync.Mutex
	name := "Groceries"
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			task := sampleTask()
			mu.Lock()
			task.Name = name
			mu.Unlock()
			first := false
			once.Do(func() { first = true })
			if first {
				close(started)
				<-release
			}
			return task, nil
		},
		updateFn: func(ctx context.Context, task *domain.Task) error {
			mu.Lock()
			name = task.Name
			mu.Unlock()
			return nil
		},
	}
	cache := New(backend, client, time.Minute, "", nil)

	done := make(chan error, 1)
	go func() {
		_, err := cache.FindByID(ctx, id)
		done <- err
	}()

	<-started
	renamed := sampleTask()
	renamed.Name = "Shopping"
	require.NoError(t, cache.Update(ctx, renamed))
	close(release)
	require.NoError(t, <-done)

	got, err := cache.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", got.Name)

	cached, err := cache.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", cached.Name)
}

func TestFindByID_CancelledCallerDoesNotFailOthers(t *testing.T) {
	_, client := newRedis(t)
	id := sampleTask().ID

	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	cache := New(&stubBackend{
		findByIDFn: func(ctx context.Context, id string) (*domain.Task, error) {
			once.Do(func() { close(started) })
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return sampleTask(), nil
		},
	}, client, time.Minute, "", nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.FindByID(firstCtx, id)
		firstErr <- err
	}()
	<-started

	type result struct {
		task *domain.Task
		err  error
	}
	second := make(chan result, 1)
	go func() {
		task, err := cache.FindByID(context.Background(), id)
		second <- result{task, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.True(t, errors.IsErrorType(<-firstErr, errors.ErrorTypeTimeout))

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Groceries", res.task.Name)
}

func TestUpdateBumpsGeneration(t *testing.T) {
	mr, client := newRedis(t)
	ctx := context.Background()
	task := sampleTask()

	cache := New(&stubBackend{
		updateFn: func(ctx context.Context, _ *domain.Task) error { return nil },
	}, client, time.Minute, "p:", nil).WithLookupTimeout(5 * time.Second)

	require.NoError(t, cache.Update(ctx, task))
	require.NoError(t, cache.Update(ctx, task))

	gen, err := mr.Get("p:task-gen:" + task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", gen)
	assert.Equal(t, 65*time.Second, mr.TTL("p:task-gen:"+task.ID))
}
