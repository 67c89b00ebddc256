// Package store holds the client's canonical user, post, theme and notification state and mirrors
// every mutation to durable key/value storage.
//
// Mutations work on a copy and only replace the in-memory state after the copy has been written,
// so a failed write leaves both memory and storage as they were.
package store

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/arz/idgen"
	"github.com/cppla/arz/models"
)

// Storage keys.
const (
	KeyUser          = "user"
	KeyPosts         = "posts"
	KeyTheme         = "theme"
	KeyNotifications = "notifications"
	// KeyAccount remembers the last signed-in account so a local login still works after logout.
	KeyAccount = "account"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

const (
	defaultPostsPerPage     = 6
	defaultMaxNotifications = 50
)

// Store is the Local Store. It is safe for concurrent use; every exported method runs to
// completion under one lock.
type Store struct {
	mu sync.Mutex

	storage Storage
	ids     *idgen.Generator
	now     func() time.Time
	log     *zap.Logger

	perPage  int
	maxNotes int

	user          models.User
	posts         []models.Post
	theme         string
	currentPage   int
	notifications []models.Notification
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithPostsPerPage sets the page size used by VisiblePosts.
func WithPostsPerPage(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithMaxNotifications caps the stored notification list.
func WithMaxNotifications(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxNotes = n
		}
	}
}

// WithInitialState seeds the in-memory state without touching storage.
func WithInitialState(u models.User, posts []models.Post) Option {
	return func(s *Store) {
		s.user = u.Clone()
		s.user.Normalize()
		s.posts = models.ClonePosts(posts)
	}
}

// New builds a Store over storage. Call Load to read persisted state.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:     storage,
		now:         time.Now,
		log:         zap.NewNop(),
		perPage:     defaultPostsPerPage,
		maxNotes:    defaultMaxNotifications,
		user:        models.Guest(),
		posts:       []models.Post{},
		theme:       ThemeDark,
		currentPage: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = idgen.NewWithClock(s.now)
	s.observeIDs(s.posts)
	return s
}

// Load reads user, posts, theme and notifications from storage. Missing or corrupt values fall
// back to defaults; Load never fails.
func (s *Store) Load() {
	s.LoadUser()
	s.LoadPosts()
	s.LoadTheme()
	s.loadNotifications()
}

// LoadUser reads the user from storage, substituting Guest on absence or parse failure.
func (s *Store) LoadUser() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.Guest()
	if !s.readJSON(KeyUser, &u) {
		u = models.Guest()
	}
	u.Normalize()
	s.user = u
	return u.Clone()
}

// LoadPosts reads the post list from storage, substituting an empty list on absence or parse
// failure.
func (s *Store) LoadPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []models.Post
	if !s.readJSON(KeyPosts, &posts) || posts == nil {
		posts = []models.Post{}
	}
	for i := range posts {
		posts[i].Normalize()
	}
	s.posts = posts
	s.observeIDs(posts)
	return models.ClonePosts(posts)
}

// LoadTheme reads the theme, defaulting to dark.
func (s *Store) LoadTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var theme string
	if !s.readJSON(KeyTheme, &theme) || !validTheme(theme) {
		theme = ThemeDark
	}
	s.theme = theme
	return theme
}

func (s *Store) loadNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notes []models.Notification
	if !s.readJSON(KeyNotifications, &notes) || notes == nil {
		notes = []models.Notification{}
	}
	s.notifications = notes
}

// SaveUser overwrites the stored user with u and makes it current.
func (s *Store) SaveUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := u.Clone()
	next.Normalize()
	return s.commitUser(next)
}

// SavePosts overwrites the stored post list with posts and makes it current.
func (s *Store) SavePosts(posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := models.ClonePosts(posts)
	for i := range next {
		next[i].Normalize()
	}
	s.observeIDs(next)
	return s.commitPosts(next)
}

// User returns a copy of the current user.
func (s *Store) User() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// Theme returns the current theme.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme persists theme. Unknown values are ignored.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !validTheme(theme) {
		return invalid("unknown theme " + theme)
	}
	return s.commitTheme(theme)
}

// ToggleTheme flips between dark and light and returns the new theme.
func (s *Store) ToggleTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ThemeLight
	if s.theme == ThemeLight {
		next = ThemeDark
	}
	if err := s.commitTheme(next); err != nil {
		return s.theme, err
	}
	return next, nil
}

func validTheme(t string) bool {
	return t == ThemeDark || t == ThemeLight
}

// readJSON decodes key into out and reports success. Absence and corruption both return false.
func (s *Store) readJSON(key string, out any) bool {
	raw, ok, err := s.storage.GetItem(key)
	if err != nil {
		s.log.Warn("storage read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.log.Warn("discarding corrupt stored value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) writeJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.storage.SetItem(key, string(b)); err != nil {
		s.log.Warn("storage write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) commitUser(u models.User) error {
	if err := s.writeJSON(KeyUser, u); err != nil {
		return err
	}
	s.user = u
	return nil
}

func (s *Store) commitPosts(posts []models.Post) error {
	if err := s.writeJSON(KeyPosts, posts); err != nil {
		return err
	}
	s.posts = posts
	return nil
}

func (s *Store) commitTheme(theme string) error {
	if err := s.writeJSON(KeyTheme, theme); err != nil {
		return err
	}
	s.theme = theme
	return nil
}

func (s *Store) observeIDs(posts []models.Post) {
	for _, p := range posts {
		s.ids.Observe(p.ID)
		for _, c := range p.Comments {
			s.ids.Observe(c.ID)
		}
	}
}
