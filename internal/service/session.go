package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/credits"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/metrics"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/models"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/report"
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/repository"
	"go.uber.org/zap"
)

// View is everything the presentation layer renders after one interaction:
// the current list and a fresh evaluation of it.
type View struct {
	SessionID uuid.UUID          `json:"session_id"`
	Workloads []credits.Workload `json:"workloads"`
	Estimate  *credits.Estimate  `json:"estimate"`
	Summary   report.Summary     `json:"summary"`
}

type SessionService struct {
	store   repository.SessionStore
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewSessionService(store repository.SessionStore, collector *metrics.Collector, logger *zap.Logger) *SessionService {
	return &SessionService{
		store:   store,
		metrics: collector,
		logger:  logger,
	}
}

// Load initializes or backfills the session's list, saves it back and
// evaluates it. Saving refreshes the session TTL.
func (s *SessionService) Load(ctx context.Context, id uuid.UUID) (*View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return s.view(session)
}

// Evaluate returns the estimate and summary of the session's current list.
func (s *SessionService) Evaluate(ctx context.Context, id uuid.UUID) (*credits.Estimate, report.Summary, error) {
	view, err := s.Load(ctx, id)
	if err != nil {
		return nil, report.Summary{}, err
	}
	return view.Estimate, view.Summary, nil
}

func (s *SessionService) Append(ctx context.Context, id uuid.UUID, defaults *credits.WorkloadPatch) (*View, error) {
	return s.mutate(ctx, id, "append", func(l *credits.List) error {
		return l.Append(defaults)
	})
}

func (s *SessionService) RemoveAt(ctx context.Context, id uuid.UUID, index int) (*View, error) {
	return s.mutate(ctx, id, "remove", func(l *credits.List) error {
		return l.RemoveAt(index)
	})
}

func (s *SessionService) Update(ctx context.Context, id uuid.UUID, index int, field credits.Field, value any) (*View, error) {
	return s.mutate(ctx, id, "update", func(l *credits.List) error {
		return l.Update(index, field, value)
	})
}

// Apply edits several fields of one workload at once.
func (s *SessionService) Apply(ctx context.Context, id uuid.UUID, index int, edit credits.Edit) (*View, error) {
	return s.mutate(ctx, id, "edit", func(l *credits.List) error {
		return l.Apply(index, edit)
	})
}

// Reset ends the session; the next access starts from the default list.
func (s *SessionService) Reset(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	s.logger.Debug("session reset", zap.String("session_id", id.String()))
	return nil
}

// EvaluateWorkloads evaluates a caller supplied list without touching any session.
func (s *SessionService) EvaluateWorkloads(workloads []credits.Workload) (*credits.Estimate, report.Summary, error) {
	est, err := credits.Evaluate(workloads)
	s.recordEvaluation(len(workloads), est, err)
	if err != nil {
		return nil, report.Summary{}, err
	}
	return est, report.BuildSummary(workloads, est), nil
}

func (s *SessionService) mutate(ctx context.Context, id uuid.UUID, op string, fn func(*credits.List) error) (*View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(session.Workloads); err != nil {
		s.metrics.RecordMutation(op, err)
		return nil, err
	}
	s.metrics.RecordMutation(op, nil)

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Debug("workloads updated",
		zap.String("session_id", id.String()),
		zap.String("operation", op),
		zap.Int("workloads", session.Workloads.Len()),
	)

	return s.view(session)
}

func (s *SessionService) load(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if session == nil {
		s.metrics.RecordSessionCreated()
		return models.NewSession(id), nil
	}

	session.Workloads = credits.Initialize(session.Workloads)
	return session, nil
}

func (s *SessionService) save(ctx context.Context, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *SessionService) view(session *models.Session) (*View, error) {
	workloads := session.Workloads.Workloads()

	est, err := credits.Evaluate(workloads)
	s.recordEvaluation(len(workloads), est, err)
	if err != nil {
		// Stored lists are validated on every write, so this is a defect
		if errors.Is(err, credits.ErrInvalidSize) {
			s.logger.Error("stored workload list failed evaluation",
				zap.String("session_id", session.ID.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	return &View{
		SessionID: session.ID,
		Workloads: workloads,
		Estimate:  est,
		Summary:   report.BuildSummary(workloads, est),
	}, nil
}

func (s *SessionService) recordEvaluation(n int, est *credits.Estimate, err error) {
	if err != nil {
		s.metrics.RecordEvaluation(n, 0, err)
		return
	}
	s.metrics.RecordEvaluation(n, est.Totals.Monthly, nil)
}
