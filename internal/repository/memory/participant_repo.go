package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
)

// ParticipantRepo is an in-memory participant directory keyed by email.
type ParticipantRepo struct {
	mu      sync.RWMutex
	byEmail map[string]entity.Participant
}

func NewParticipantRepo() *ParticipantRepo {
	return &ParticipantRepo{byEmail: make(map[string]entity.Participant)}
}

func (r *ParticipantRepo) Create(ctx context.Context, p *entity.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[p.Email]; exists {
		return fmt.Errorf("%w: participant %s already exists", apperrors.ErrConflict, p.Email)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.byEmail[p.Email] = *p
	return nil
}

func (r *ParticipantRepo) GetByID(ctx context.Context, id string) (*entity.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byEmail {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *ParticipantRepo) GetByEmail(ctx context.Context, email string) (*entity.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byEmail[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r *ParticipantRepo) List(ctx context.Context, limit, offset int) ([]entity.Participant, int64, error) {
	r.mu.RLock()
	all := make([]entity.Participant, 0, len(r.byEmail))
	for _, p := range r.byEmail {
		all = append(all, p)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= len(all) {
		return []entity.Participant{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *ParticipantRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byEmail)), nil
}
