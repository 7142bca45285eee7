package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/domain/repository"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// OTPStore is a process-local repository.OTPRepository used in development
// and tests. A single mutex serializes every operation.
type OTPStore struct {
	mu     sync.Mutex
	nextID uint
	codes  map[uint]entity.OTPCode
}

func NewOTPStore() *OTPStore {
	return &OTPStore{codes: make(map[uint]entity.OTPCode)}
}

func (s *OTPStore) Replace(ctx context.Context, email string, guard repository.OTPGuard, code *entity.OTPCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guard != nil {
		if err := guard(s.byEmailLocked(email)); err != nil {
			return err
		}
	}
	for id, c := range s.codes {
		if c.Email == email {
			delete(s.codes, id)
		}
	}
	s.nextID++
	code.ID = s.nextID
	s.codes[code.ID] = *code
	return nil
}

func (s *OTPStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, id)
	return nil
}

func (s *OTPStore) FindActive(ctx context.Context, email, codeHash string, now time.Time) (*entity.OTPCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byEmailLocked(email) {
		if c.CodeHash == codeHash && c.IsActive(now) {
			found := c
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *OTPStore) MarkUsed(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[id]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	s.codes[id] = c
	return true, nil
}

func (s *OTPStore) RecordFailedAttempt(ctx context.Context, email string, now time.Time, maxAttempts int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var burned bool
	for id, c := range s.codes {
		if c.Email != email || !c.IsActive(now) {
			continue
		}
		c.AttemptCount++
		if c.AttemptCount >= maxAttempts {
			c.Used = true
			burned = true
		}
		s.codes[id] = c
	}
	return burned, nil
}

func (s *OTPStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, c := range s.codes {
		if c.IsExpired(now) {
			delete(s.codes, id)
			removed++
		}
	}
	return removed, nil
}

func (s *OTPStore) ListByEmail(ctx context.Context, email string) ([]entity.OTPCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byEmailLocked(email), nil
}

// byEmailLocked returns copies ordered by issue time, newest first.
func (s *OTPStore) byEmailLocked(email string) []entity.OTPCode {
	var out []entity.OTPCode
	for _, c := range s.codes {
		if c.Email == email {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out
}
