package services

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/domain/config"
	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/events"
	"grapheditor/domain/panel"
	"grapheditor/domain/selection"
	"grapheditor/domain/session"
	pkgerrors "grapheditor/pkg/errors"
)

// SessionView is everything a client needs to render a session
type SessionView struct {
	SessionID     string             `json:"session_id"`
	Elements      []entities.Element `json:"elements"`
	Directed      bool               `json:"directed"`
	NextID        string             `json:"next_id"`
	Selection     selection.Snapshot `json:"selection"`
	Panel         panel.Panel        `json:"panel"`
	CanUndo       bool               `json:"can_undo"`
	CanRedo       bool               `json:"can_redo"`
	HistoryLength int                `json:"history_length"`
	Cursor        int                `json:"cursor"`
}

// Limits are the hot-reloadable editing limits
type Limits struct {
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`
	MaxElements  int `json:"max_elements" yaml:"max_elements"`
}

type historyMode int

const (
	historyRecord historyMode = iota
	historySkip
	historyClear
)

// outcome is what an operation hands back to mutate. A nil outcome means the
// operation did not apply and the session stays as it is.
type outcome struct {
	graph *aggregates.Graph
	// selection and panel are recomputed when nil
	selection *selection.Snapshot
	panel     *panel.Panel
	history   historyMode
	events    []events.DomainEvent
}

// EditorService runs every user action against a session as one atomic
// transition: lock, work on a copy, record history, swap in, save, notify.
type EditorService struct {
	sessions  ports.SessionRepository
	locker    ports.SessionLocker
	publisher ports.EventPublisher
	notifier  ports.SessionNotifier
	metrics   ports.Metrics
	canvas    *CanvasOps
	editor    *AttributeEditor
	limits    atomic.Pointer[Limits]
	logger    *zap.Logger
}

// NewEditorService creates the session editor. publisher, notifier and
// metrics may be nil.
func NewEditorService(
	sessions ports.SessionRepository,
	locker ports.SessionLocker,
	publisher ports.EventPublisher,
	notifier ports.SessionNotifier,
	metrics ports.Metrics,
	canvas *CanvasOps,
	editor *AttributeEditor,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *EditorService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	s := &EditorService{
		sessions:  sessions,
		locker:    locker,
		publisher: publisher,
		notifier:  notifier,
		metrics:   metrics,
		canvas:    canvas,
		editor:    editor,
		logger:    logger,
	}
	s.limits.Store(&Limits{HistoryLimit: cfg.HistoryLimit, MaxElements: cfg.MaxElements})
	return s
}

// Limits returns the limits in effect
func (s *EditorService) Limits() Limits {
	return *s.limits.Load()
}

// UpdateLimits swaps the limits used by subsequent operations. History logs
// of existing sessions pick up the new cap on their next change.
func (s *EditorService) UpdateLimits(l Limits) {
	s.limits.Store(&l)
	s.logger.Info("Editing limits updated",
		zap.Int("history_limit", l.HistoryLimit),
		zap.Int("max_elements", l.MaxElements),
	)
}

// CreateSession starts a session with an empty graph. An existing session
// with the same id is a conflict.
func (s *EditorService) CreateSession(ctx context.Context, id session.ID, directed bool) (*SessionView, error) {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.sessions.GetByID(ctx, id); err == nil {
		return nil, pkgerrors.NewConflictError("session " + id.String() + " already exists")
	} else if !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	sess := session.New(id, directed, s.Limits().HistoryLimit)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save session")
	}
	s.reportActiveSessions(ctx)

	s.logger.Info("Session created",
		zap.String("sessionID", sess.ID().String()),
		zap.Bool("directed", directed),
	)
	return s.view(sess), nil
}

// DeleteSession ends a session
func (s *EditorService) DeleteSession(ctx context.Context, id session.ID) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.reportActiveSessions(ctx)
	s.logger.Info("Session deleted", zap.String("sessionID", id.String()))
	return nil
}

// View returns the current state of a session
func (s *EditorService) View(ctx context.Context, id session.ID) (*SessionView, error) {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *EditorService) view(sess *session.Session) *SessionView {
	g := sess.Graph()
	h := sess.History()
	return &SessionView{
		SessionID:     sess.ID().String(),
		Elements:      g.Elements(),
		Directed:      g.Directed(),
		NextID:        g.NextID(),
		Selection:     sess.Selection(),
		Panel:         sess.Panel(),
		CanUndo:       h.CanUndo(),
		CanRedo:       h.CanRedo(),
		HistoryLength: h.Len(),
		Cursor:        h.Cursor(),
	}
}

// mutate runs fn on a working copy of the session graph and commits the
// outcome. Nothing is stored when fn fails or returns no outcome.
func (s *EditorService) mutate(
	ctx context.Context,
	id session.ID,
	operation string,
	fn func(sess *session.Session, work *aggregates.Graph) (*outcome, error),
) (view *SessionView, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, time.Since(start), err)
		}
	}()

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := sess.Graph().Snapshot()
	out, err := fn(sess, sess.Graph().Clone())
	if err != nil {
		s.logger.Debug("Operation rejected",
			zap.String("sessionID", id.String()),
			zap.String("operation", operation),
			zap.Error(err),
		)
		return nil, err
	}
	if out == nil {
		return s.view(sess), nil
	}

	limits := s.Limits()
	grows := out.graph.Len() > sess.Graph().Len()
	if out.history == historyRecord && grows && limits.MaxElements > 0 && out.graph.Len() > limits.MaxElements {
		return nil, pkgerrors.NewValidationErrorf("graph cannot hold more than %d elements", limits.MaxElements).
			WithCode("TOO_MANY_ELEMENTS")
	}

	log := sess.History()
	log.SetLimit(limits.HistoryLimit)
	switch out.history {
	case historyRecord:
		log.Record(before, out.graph.Snapshot())
	case historyClear:
		log.Clear()
	}

	pending := append(out.graph.GetUncommittedEvents(), out.events...)
	out.graph.MarkEventsAsCommitted()
	sess.ReplaceGraph(out.graph)

	var sel selection.Snapshot
	if out.selection != nil {
		sel = *out.selection
	} else {
		current := sess.Selection()
		sel = selection.Compute(current.Nodes, current.Edges, out.graph)
		s.reportStale(id, sel.Stale)
	}
	var pnl panel.Panel
	if out.panel != nil {
		pnl = *out.panel
	} else {
		pnl = panel.Build(sel, out.graph)
	}
	sess.SetSelection(sel, pnl)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to save session")
	}

	s.publish(ctx, id, pending)
	view = s.view(sess)
	if s.notifier != nil {
		s.notifier.NotifySession(id.String(), view)
	}
	if s.metrics != nil {
		s.metrics.ObserveHistoryDepth(log.Len())
	}

	s.logger.Debug("Operation applied",
		zap.String("sessionID", id.String()),
		zap.String("operation", operation),
		zap.Int("elements", out.graph.Len()),
		zap.Int("events", len(pending)),
		zap.Int("cursor", log.Cursor()),
	)
	return view, nil
}

// publish is best effort; the session change has already been committed
func (s *EditorService) publish(ctx context.Context, id session.ID, pending []events.DomainEvent) {
	if s.publisher == nil || len(pending) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("sessionID", id.String()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
}

func (s *EditorService) reportStale(id session.ID, stale int) {
	if stale == 0 {
		return
	}
	s.logger.Debug("Skipped stale selection descriptors",
		zap.String("sessionID", id.String()),
		zap.Int("stale", stale),
	)
	if s.metrics != nil {
		s.metrics.IncStaleReferences(stale)
	}
}

func (s *EditorService) reportActiveSessions(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.sessions.Count(ctx); err == nil {
		s.metrics.SetActiveSessions(n)
	}
}
