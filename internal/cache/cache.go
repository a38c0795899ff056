// Package cache keeps recently read tasks in Redis in front of a task store.
package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
)

const defaultLookupTimeout = 30 * time.Second

var errStaleRead = stderrors.New("task changed during lookup")

type backend interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	FindByName(ctx context.Context, name string) (*domain.Task, error)
	FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Ping(ctx context.Context) error
	Close() error
}

// cachedTask is the stored JSON form of a task.
type cachedTask struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Cache serves FindByID from Redis and evicts entries on update and delete.
// Redis failures never fail a call; the backing store answers instead.
//
// Every task has a generation counter in Redis that update and delete bump.
// A lookup only fills the cache when the generation it saw before reading
// the store is still current, so a read racing a write never caches the
// old row.
type Cache struct {
	base          backend
	redis         *redis.Client
	ttl           time.Duration
	prefix        string
	lookupTimeout time.Duration
	group         singleflight.Group
	logger        logrus.FieldLogger
}

// New wraps base with a Redis cache. A nil client disables caching.
func New(base backend, client *redis.Client, ttl time.Duration, prefix string, logger logrus.FieldLogger) *Cache {
	if base == nil {
		panic("cache.New: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Cache{
		base:          base,
		redis:         client,
		ttl:           ttl,
		prefix:        prefix,
		lookupTimeout: defaultLookupTimeout,
		logger:        logger,
	}
}

// WithLookupTimeout bounds the shared store lookup behind a cache miss.
// Non-positive values are ignored.
func (c *Cache) WithLookupTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.lookupTimeout = d
	}
	return c
}

// Connect opens a Redis client for url ("redis://host:port/db") and checks it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Cache) Create(ctx context.Context, task *domain.Task) error {
	return c.base.Create(ctx, task)
}

func (c *Cache) Update(ctx context.Context, task *domain.Task) error {
	if err := c.base.Update(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.ID)
	return nil
}

// FindByID reads through the cache. Concurrent misses for one id share a
// single backend lookup, which keeps running when the caller that started
// it goes away.
func (c *Cache) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if task, ok := c.load(ctx, id); ok {
		return task, nil
	}

	ch := c.group.DoChan(id, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.lookupTimeout)
		defer cancel()

		gen, known := c.generation(lookupCtx, id)
		task, err := c.base.FindByID(lookupCtx, id)
		if err != nil {
			return nil, err
		}
		if known {
			c.store(lookupCtx, task, gen)
		}
		return task, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.FromContextError("find task", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		task := *res.Val.(*domain.Task)
		return &task, nil
	}
}

func (c *Cache) FindByName(ctx context.Context, name string) (*domain.Task, error) {
	return c.base.FindByName(ctx, name)
}

func (c *Cache) FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error) {
	return c.base.FindAll(ctx, req)
}

func (c *Cache) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if err := c.base.SoftDelete(ctx, id, at); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.base.Ping(ctx)
}

// Close closes the backing store and the Redis client.
func (c *Cache) Close() error {
	err := c.base.Close()
	if c.redis != nil {
		if rerr := c.redis.Close(); err == nil {
			err = rerr
		}
	}
	return err
}

func (c *Cache) load(ctx context.Context, id string) (*domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("task_id", id).Warn("cache read failed")
			_ = c.redis.Del(ctx, c.key(id)).Err()
		}
		return nil, false
	}
	var entry cachedTask
	if err := sonic.Unmarshal(data, &entry); err != nil {
		_ = c.redis.Del(ctx, c.key(id)).Err()
		return nil, false
	}
	return &domain.Task{
		ID:          entry.ID,
		Name:        entry.Name,
		Description: entry.Description,
		Status:      domain.TaskStatus(entry.Status),
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}, true
}

// generation returns the current generation of id. ok is false when Redis
// cannot answer, in which case nothing may be cached.
func (c *Cache) generation(ctx context.Context, id string) (gen int64, ok bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, c.generationKey(id)).Int64()
	if err != nil && err != redis.Nil {
		c.logger.WithError(err).WithField("task_id", id).Warn("cache generation read failed")
		return 0, false
	}
	return gen, true
}

// store caches task unless its generation moved past gen.
func (c *Cache) store(ctx context.Context, task *domain.Task, gen int64) {
	data, err := sonic.Marshal(cachedTask{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	})
	if err != nil {
		return
	}

	genKey := c.generationKey(task.ID)
	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(task.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case stderrors.Is(err, errStaleRead), stderrors.Is(err, redis.TxFailedErr):
		c.logger.WithField("task_id", task.ID).Debug("skipped caching task changed during lookup")
	default:
		c.logger.WithError(err).WithField("task_id", task.ID).Warn("cache write failed")
	}
}

// invalidate bumps the generation of id and drops its entry.
func (c *Cache) invalidate(ctx context.Context, id string) {
	if c.redis == nil {
		return
	}
	genKey := c.generationKey(id)
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.lookupTimeout+time.Minute)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("task_id", id).Warn("cache evict failed")
	}
}

func (c *Cache) key(id string) string {
	return c.prefix + "task:" + id
}

func (c *Cache) generationKey(id string) string {
	return c.prefix + "task-gen:" + id
}
