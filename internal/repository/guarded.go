package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/circuitbreaker"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
)

// GuardedSessionStore fails fast with circuitbreaker.ErrCircuitOpen while
// the wrapped store keeps erroring.
type GuardedSessionStore struct {
	next    SessionStore
	breaker *circuitbreaker.Breaker
}

func NewGuardedSessionStore(next SessionStore, breaker *circuitbreaker.Breaker) *GuardedSessionStore {
	return &GuardedSessionStore{next: next, breaker: breaker}
}

func (g *GuardedSessionStore) Find(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session *models.Session
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		session, err = g.next.Find(ctx, id)
		return err
	})
	return session, err
}

func (g *GuardedSessionStore) Save(ctx context.Context, session *models.Session) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.Save(ctx, session)
	})
}

func (g *GuardedSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.next.Delete(ctx, id)
	})
}

func (g *GuardedSessionStore) Breaker() *circuitbreaker.Breaker {
	return g.breaker
}
