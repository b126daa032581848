package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/nailstudio/agenda/internal/client/models"
	"github.com/nailstudio/agenda/internal/client/repositories/kv"
	"github.com/nailstudio/agenda/internal/dbx"
	"github.com/nailstudio/agenda/internal/logging"
)

const (
	KeyUser  = "user"
	KeyToken = "token"
)

// Store reads and writes the persisted session.
type Store struct {
	mu     sync.Mutex
	repo   kv.Repository
	atomic atomicFunc
	log    logging.Logger
}

// atomicFunc runs fn with a repository whose writes commit together.
type atomicFunc func(ctx context.Context, fn func(ctx context.Context, repo kv.Repository) error) error

func newStore(repo kv.Repository, atomic atomicFunc, log logging.Logger) *Store {
	return &Store{repo: repo, atomic: atomic, log: log}
}

// NewSQLiteStore persists into the kv table of db, writing both entries in
// one transaction.
func NewSQLiteStore(db *sql.DB, log logging.Logger) *Store {
	return newStore(kv.NewSQLiteRepository(db), func(ctx context.Context, fn func(context.Context, kv.Repository) error) error {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, kv.NewSQLiteRepository(tx))
		})
	}, log)
}

// NewRedisStore persists under prefix in Redis, writing both entries in one
// MULTI/EXEC transaction.
func NewRedisStore(rdb redis.Cmdable, prefix string, log logging.Logger) *Store {
	return newStore(kv.NewRedisRepository(rdb, prefix), func(ctx context.Context, fn func(context.Context, kv.Repository) error) error {
		_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return fn(ctx, kv.NewRedisRepository(pipe, prefix))
		})
		return err
	}, log)
}

// Save writes s. A nil user or empty token removes the matching entry.
func (st *Store) Save(ctx context.Context, s models.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	var userJSON []byte
	if s.User != nil {
		b, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("encode session user: %w", err)
		}
		userJSON = b
	}

	err := st.atomic(ctx, func(ctx context.Context, repo kv.Repository) error {
		if userJSON == nil {
			if err := repo.Delete(ctx, KeyUser); err != nil {
				return err
			}
		} else if err := repo.Set(ctx, KeyUser, userJSON); err != nil {
			return err
		}

		if s.Token == "" {
			return repo.Delete(ctx, KeyToken)
		}
		return repo.Set(ctx, KeyToken, []byte(s.Token))
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load reads the stored session. Absent entries come back as zero fields;
// a user entry that does not decode, or decodes to a user with neither id
// nor username (JSON null, {}), is reported as absent and logged. The
// result may be partial (token without user or the reverse).
func (st *Store) Load(ctx context.Context) (models.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var s models.Session

	token, err := st.repo.Get(ctx, KeyToken)
	if err != nil {
		return s, fmt.Errorf("load session token: %w", err)
	}
	s.Token = string(token)

	raw, err := st.repo.Get(ctx, KeyUser)
	if err != nil {
		return s, fmt.Errorf("load session user: %w", err)
	}
	if len(raw) > 0 {
		var u models.User
		switch err := json.Unmarshal(raw, &u); {
		case err != nil:
			st.log.Warn(ctx, "stored session user is malformed, ignoring it", "error", err)
		case u.ID.IsZero() && u.Username == "":
			st.log.Warn(ctx, "stored session user is empty, ignoring it")
		default:
			s.User = &u
		}
	}
	return s, nil
}

// Clear removes both entries.
func (st *Store) Clear(ctx context.Context) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	err := st.atomic(ctx, func(ctx context.Context, repo kv.Repository) error {
		if err := repo.Delete(ctx, KeyUser); err != nil {
			return err
		}
		return repo.Delete(ctx, KeyToken)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token reads the bearer token straight from storage; "" when absent.
func (st *Store) Token(ctx context.Context) (string, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	b, err := st.repo.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return string(b), nil
}
