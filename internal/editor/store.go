package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrTooManySessions = errors.New("too many open editor sessions")
)

// DefaultMaxSessions is used when a store is created with a non-positive limit.
const DefaultMaxSessions = 16

// Store holds the open editor sessions keyed by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	pipeline *imaging.Pipeline
	log      *zap.Logger
}

// NewStore creates a store allowing up to maxSessions open editors.
func NewStore(maxSessions int, pipeline *imaging.Pipeline, log *zap.Logger) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if pipeline == nil {
		pipeline = imaging.NewPipeline(imaging.DefaultQuality)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		max:      maxSessions,
		pipeline: pipeline,
		log:      log,
	}
}

// Open decodes src and starts a new session over it.
func (st *Store) Open(ctx context.Context, src *imaging.ImageSource, vp Viewport) (*Session, error) {
	st.mu.RLock()
	full := len(st.sessions) >= st.max
	st.mu.RUnlock()
	if full {
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, st.max)
	}

	img, err := imaging.Decode(ctx, src)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.sessions) >= st.max {
		return nil, fmt.Errorf("%w (limit %d)", ErrTooManySessions, st.max)
	}

	id := uuid.NewString()
	s := NewSession(id, src, img, st.pipeline, vp, st.log)
	st.sessions[id] = s
	st.log.Info("editor session opened",
		zap.String("session", id),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.String("mime_type", src.MimeType()))
	return s, nil
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close closes and removes the session with the given id.
func (st *Store) Close(id string) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	st.log.Info("editor session closed", zap.String("session", id))
	return nil
}

// CloseAll closes every open session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
