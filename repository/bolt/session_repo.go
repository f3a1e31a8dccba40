package bolt

import (
	"context"
	"encoding/json"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	boltInfra "github.com/fastygo/taskboard/internal/infrastructure/bolt"
	"github.com/fastygo/taskboard/repository"
)

type sessionRepository struct {
	db   *bbolt.DB
	ttl  time.Duration
	opts options
}

// NewSessionRepository stores sessions in BoltDB. Expired sessions are
// dropped lazily when read.
func NewSessionRepository(db *bbolt.DB, ttl time.Duration, opts ...Option) repository.SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &sessionRepository{db: db, ttl: ttl, opts: buildOptions(opts)}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	var expired bool
	err := r.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltInfra.BucketSessions).Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		expired = session.IsExpired(r.opts.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		_ = r.Delete(ctx, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.opts.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(r.ttl)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return putSession(tx, session)
	})
}

func (r *sessionRepository) Delete(_ context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltInfra.BucketSessions).Delete([]byte(id))
	})
}

func (r *sessionRepository) Extend(_ context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(boltInfra.BucketSessions).Get([]byte(id))
		if raw == nil {
			return domain.ErrSessionNotFound
		}
		var session domain.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			return err
		}
		session.ExpiresAt = r.opts.now().Add(ttl)
		return putSession(tx, &session)
	})
}

func putSession(tx *bbolt.Tx, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return tx.Bucket(boltInfra.BucketSessions).Put([]byte(session.ID), payload)
}
