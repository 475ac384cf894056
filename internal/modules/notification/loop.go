// Package notification polls the server for unread notifications and shows
// them to the user one at a time.
//
// A notification is presented at most once while it is outstanding, and
// never again after this loop has acknowledged it. A failed acknowledgment
// is not retried; the notification comes back on a later poll if the server
// still reports it unread.
package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"tablebook/internal/domain"
	"tablebook/internal/pkg/logger"
)

type Config struct {
	Interval     time.Duration // time between polls (default: 2s)
	FetchTimeout time.Duration // deadline for each fetch and acknowledgment (default: 10s)
}

func DefaultConfig() Config {
	return Config{
		Interval:     2 * time.Second,
		FetchTimeout: 10 * time.Second,
	}
}

type Deps struct {
	Tokens    TokenSource
	Fetcher   Fetcher
	Acker     Acknowledger
	Refresher Refresher
	Presenter Presenter
}

type Loop struct {
	deps Deps
	cfg  Config
	log  *zap.Logger

	mu         sync.Mutex
	presenting string              // id on screen, "" when free
	acked      map[string]struct{} // acknowledged by this loop

	wg sync.WaitGroup
}

func NewLoop(deps Deps, cfg Config, log *zap.Logger) *Loop {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = def.FetchTimeout
	}
	return &Loop{
		deps:  deps,
		cfg:   cfg,
		log:   logger.OrNop(log),
		acked: make(map[string]struct{}),
	}
}

// Run polls once immediately and then on every tick until ctx is done.
// Ticks do not wait for earlier polls to finish.
func (l *Loop) Run(ctx context.Context) {
	l.spawnPoll(ctx)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.spawnPoll(ctx)
		case <-ctx.Done():
			l.log.Debug("notification loop stopped")
			return
		}
	}
}

func (l *Loop) spawnPoll(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.Poll(ctx)
	}()
}

// Poll runs one cycle: fetch, pick the first unread notification and, if
// nothing else is on screen, present it in the background. Failures are
// logged and dropped; the next poll is the retry.
func (l *Loop) Poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	token, err := l.deps.Tokens.Token(ctx)
	if err != nil {
		l.log.Debug("notification poll: token lookup failed", zap.Error(err))
		return
	}
	if token == "" {
		return
	}

	// the fetch may outlive ctx; its result is thrown away if it does
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.FetchTimeout)
	list, err := l.deps.Fetcher.ListNotifications(fetchCtx, token)
	cancel()

	if ctx.Err() != nil {
		l.log.Debug("notification poll: discarding result after shutdown")
		return
	}
	if err != nil {
		l.log.Debug("notification poll: fetch failed", zap.Error(err))
		return
	}

	n, release, ok := l.claimFirstUnread(list)
	if !ok {
		return
	}

	l.wg.Add(1)
	go l.present(ctx, token, n, release)
}

// claimFirstUnread picks the first notification that is unread and not yet
// acknowledged here, and claims the presentation slot for it. Both happen
// under one lock so an acknowledgment cannot land between them.
func (l *Loop) claimFirstUnread(list []domain.Notification) (domain.Notification, func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.presenting != "" {
		return domain.Notification{}, nil, false
	}
	for _, n := range list {
		if n.IsRead() {
			continue
		}
		if _, done := l.acked[n.ID]; done {
			continue
		}
		l.presenting = n.ID
		return n, l.releaser(), true
	}
	return domain.Notification{}, nil, false
}

// releaser frees the presentation slot. The returned func is safe to call
// more than once.
func (l *Loop) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.presenting = ""
			l.mu.Unlock()
		})
	}
}

func (l *Loop) present(ctx context.Context, token string, n domain.Notification, release func()) {
	defer l.wg.Done()

	confirmed := false
	defer func() {
		release()
		if confirmed {
			l.refresh(ctx)
		}
	}()

	ok, err := l.deps.Presenter.Present(ctx, n.Title, n.Message)
	if err != nil {
		l.log.Debug("notification not confirmed", zap.String("notification_id", n.ID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	confirmed = true

	ackCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	if err := l.deps.Acker.MarkNotificationRead(ackCtx, token, n.ID); err != nil {
		l.log.Debug("notification acknowledgment failed", zap.String("notification_id", n.ID), zap.Error(err))
		return
	}

	l.mu.Lock()
	l.acked[n.ID] = struct{}{}
	l.mu.Unlock()
}

func (l *Loop) refresh(ctx context.Context) {
	if l.deps.Refresher == nil {
		return
	}
	if err := l.deps.Refresher.Refresh(ctx); err != nil {
		l.log.Debug("refresh after notification failed", zap.Error(err))
	}
}

// Pending returns the id of the notification on screen, or "".
func (l *Loop) Pending() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.presenting
}

// Wait blocks until in-flight polls and presentations have finished.
func (l *Loop) Wait() {
	l.wg.Wait()
}
