// Package app turns user intents into Local Store mutations, mirrors them to the remote API when
// one is configured, and records a toast for each outcome. Remote failures never undo local state.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cppla/arz/models"
	"github.com/cppla/arz/remote"
	"github.com/cppla/arz/store"
)

// ErrThrottled is returned when a guarded action is repeated inside its disable window.
var ErrThrottled = errors.New("action temporarily disabled")

const (
	defaultDisableWindow = time.Second
	defaultSyncTimeout   = 10 * time.Second
)

// App wires a Store to a remote API.
type App struct {
	store *store.Store
	api   remote.API
	log   *zap.Logger
	now   func() time.Time

	window      time.Duration
	syncTimeout time.Duration

	mu     sync.Mutex
	guards map[guardKey]*rate.Limiter

	pending sync.WaitGroup
}

type guardKey struct {
	action string
	postID int64
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used for remote diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithClock overrides the clock used by the disable-window guard.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithDisableWindow sets how long like and dislike stay disabled for a post after use.
func WithDisableWindow(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.window = d
		}
	}
}

// WithSyncTimeout bounds each background remote call.
func WithSyncTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.syncTimeout = d
		}
	}
}

// New returns an App. A nil api behaves like remote.Disabled.
func New(s *store.Store, api remote.API, opts ...Option) *App {
	if api == nil {
		api = remote.Disabled{}
	}
	a := &App{
		store:       s,
		api:         api,
		log:         zap.NewNop(),
		now:         time.Now,
		window:      defaultDisableWindow,
		syncTimeout: defaultSyncTimeout,
		guards:      make(map[guardKey]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Store exposes the underlying Local Store for read-only views.
func (a *App) Store() *store.Store { return a.store }

// Init loads persisted state, then refreshes the feed from the remote. A remote answer replaces
// the local list verbatim; an empty feed after that is seeded with the sample posts.
func (a *App) Init(ctx context.Context) error {
	a.store.Load()
	posts, err := a.api.FetchPosts(ctx)
	if err != nil {
		a.remoteFailed("fetch posts", err)
	} else if err := a.store.ReplacePosts(posts); err != nil {
		return err
	}
	if len(a.store.Posts()) == 0 {
		if _, err := a.store.SeedSamples(); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until every background remote call has finished.
func (a *App) Wait() {
	a.pending.Wait()
}

// allow consumes the disable window for action on postID.
func (a *App) allow(action string, postID int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := guardKey{action: action, postID: postID}
	lim, ok := a.guards[k]
	if !ok {
		lim = rate.NewLimiter(rate.Every(a.window), 1)
		a.guards[k] = lim
	}
	return lim.AllowN(a.now(), 1)
}

// sync runs call in the background; its outcome only reaches the log.
func (a *App) sync(what string, call func(ctx context.Context) error) {
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.syncTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			a.remoteFailed(what, err)
		}
	}()
}

func (a *App) remoteFailed(what string, err error) {
	if errors.Is(err, remote.ErrDisabled) {
		a.log.Debug("remote disabled", zap.String("call", what))
		return
	}
	a.log.Warn("remote call failed, continuing locally", zap.String("call", what), zap.Error(err))
}

func (a *App) notify(kind, msg string) {
	if _, err := a.store.Notify(kind, msg); err != nil {
		a.log.Warn("notification not saved", zap.Error(err))
	}
}

// fail records err as an error toast and returns it.
func (a *App) fail(err error) error {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		a.notify(models.NotifyError, ve.Message)
	case errors.Is(err, store.ErrPostNotFound):
		a.notify(models.NotifyError, "Post not found!")
	case errors.Is(err, store.ErrCommentNotFound):
		a.notify(models.NotifyError, "Comment not found!")
	case errors.Is(err, store.ErrInvalidCredentials):
		a.notify(models.NotifyError, "Invalid email or password!")
	case errors.Is(err, store.ErrNoAccount):
		a.notify(models.NotifyError, "No user found. Please register first.")
	}
	return err
}
