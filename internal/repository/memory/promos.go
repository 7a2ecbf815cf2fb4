package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kirinyoku/padelgo/internal/domain"
	"github.com/kirinyoku/padelgo/internal/repository"
)

type promoRepo struct{ v view }

func (r *promoRepo) Create(_ context.Context, p *domain.PromoCode) error {
	const op = "memory.promoRepo.Create"

	defer r.v.lock()()
	st := r.v.s.st

	c, ok := st.courts[p.CourtID]
	if !ok || c.ArchivedAt != nil {
		return fmt.Errorf("%s: %w", op, repository.ErrRestricted)
	}

	for _, other := range st.promoCodes {
		if strings.EqualFold(other.Code, p.Code) {
			return fmt.Errorf("%s: %w: promo_codes_code_key", op, repository.ErrConflict)
		}
	}

	p.ID = st.nextID()
	p.UsedCount = 0
	p.CreatedAt = r.v.s.now()
	st.promoCodes[p.ID] = *p

	return nil
}

func (r *promoRepo) GetByCode(_ context.Context, code string) (*domain.PromoCode, error) {
	const op = "memory.promoRepo.GetByCode"

	defer r.v.lock()()

	for _, p := range r.v.s.st.promoCodes {
		if strings.EqualFold(p.Code, code) {
			return &p, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
}

func (r *promoRepo) ListForCourt(_ context.Context, courtID int64) ([]domain.PromoCode, error) {
	defer r.v.lock()()

	var out []domain.PromoCode
	for _, p := range r.v.s.st.promoCodes {
		if p.CourtID == courtID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *promoRepo) Redeem(_ context.Context, id int64, now time.Time) error {
	const op = "memory.promoRepo.Redeem"

	defer r.v.lock()()
	st := r.v.s.st

	p, ok := st.promoCodes[id]
	if !ok {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	if !p.ActiveAt(now) || p.Exhausted() {
		return fmt.Errorf("%s: %w", op, repository.ErrStaleState)
	}

	p.UsedCount++
	st.promoCodes[id] = p

	return nil
}
