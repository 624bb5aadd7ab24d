// Package leaselock implements a Postgres-backed lease lock used to keep
// full-population scans from overlapping across processes. A lease is held
// under a random token, renewed on a timer, and expires on its own if the
// holder dies.
package leaselock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	ErrBusy = errors.New("lease lock busy")
	ErrLost = errors.New("lease lock lost")
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client acquires leases against the app_locks table.
type Client struct {
	db         dbConn
	ttl        time.Duration
	renewEvery time.Duration
}

// New creates a lease lock client. The default TTL is 5 minutes, renewed at
// half the TTL.
func New(pool *pgxpool.Pool) *Client {
	return &Client{
		db:         pool,
		ttl:        5 * time.Minute,
		renewEvery: 150 * time.Second,
	}
}

type lease struct {
	key    string
	token  string
	ctx    context.Context
	cancel context.CancelCauseFunc

	client   *Client
	stopOnce sync.Once
	stopCh   chan struct{}
}

// WithLease runs fn while holding the named lease. It returns ErrBusy
// without running fn when another holder owns the lease. The context passed
// to fn is canceled if the lease is lost mid-run.
func (c *Client) WithLease(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l, err := c.acquire(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		_ = l.release(context.Background())
	}()
	return fn(l.ctx)
}

func (c *Client) acquire(ctx context.Context, key string) (*lease, error) {
	if key == "" {
		return nil, errors.New("lease lock key is empty")
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	var returnedKey string
	err = c.db.QueryRow(ctx, tryAcquireSQL, key, token, c.ttl.Milliseconds()).Scan(&returnedKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBusy
		}
		return nil, err
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &lease{
		key:    key,
		token:  token,
		ctx:    leaseCtx,
		cancel: cancel,
		client: c,
		stopCh: make(chan struct{}),
	}
	go l.renewLoop()
	return l, nil
}

func (l *lease) release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})

	_, err := l.client.db.Exec(ctx, releaseSQL, l.key, l.token)
	return err
}

func (l *lease) renewLoop() {
	t := time.NewTicker(l.client.renewEvery)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.ctx.Done():
			return
		case <-t.C:
			if err := l.renewOnce(); err != nil {
				l.cancel(err)
				return
			}
		}
	}
}

func (l *lease) renewOnce() error {
	renewCtx, cancel := context.WithTimeout(l.ctx, 15*time.Second)
	defer cancel()

	var returnedKey string
	err := l.client.db.QueryRow(renewCtx, renewSQL, l.key, l.token, l.client.ttl.Milliseconds()).Scan(&returnedKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLost
		}
		return err
	}
	return nil
}

const tryAcquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE app_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
