package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

var (
	ErrSessionClosed   = errors.New("editor session is closed")
	ErrNotCropping     = errors.New("crop mode is not enabled")
	ErrDragInProgress  = errors.New("a crop gesture is in progress")
	ErrInvalidViewport = errors.New("viewport width and height must be positive")
	ErrUnknownPointer  = errors.New("unknown pointer event")
)

// CropNotice is shown whenever cropping is unavailable because of rotation.
const CropNotice = "Cropping is only available when the image is not rotated. Reset the rotation to crop."

// Mode is the state of the crop interaction.
type Mode string

const (
	ModeIdle     Mode = "idle"
	ModeCropping Mode = "cropping"
	ModeDragging Mode = "dragging"
)

// PointerType is the kind of pointer event.
type PointerType string

const (
	PointerDown PointerType = "down"
	PointerMove PointerType = "move"
	PointerUp   PointerType = "up"
)

// PointerTarget is the element a pointer event hit.
type PointerTarget string

const (
	TargetBody    PointerTarget = "body"
	TargetHandle  PointerTarget = "handle"
	TargetOutside PointerTarget = "outside"
)

// PointerEvent is a pointer press, move or release in container pixels.
type PointerEvent struct {
	Type   PointerType   `json:"type"`
	Target PointerTarget `json:"target"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
}

// State is a snapshot of a session for display.
type State struct {
	SessionID     string                  `json:"session_id"`
	Mode          Mode                    `json:"mode"`
	Drag          DragKind                `json:"drag,omitempty"`
	Rotation      int                     `json:"rotation"`
	Adjust        imaging.ColorAdjustment `json:"adjust"`
	Cropping      bool                    `json:"cropping"`
	CropRect      imaging.CropRect        `json:"crop_rect"`
	CropAvailable bool                    `json:"crop_available"`
	Notice        string                  `json:"notice,omitempty"`
	Width         int                     `json:"width"`
	Height        int                     `json:"height"`
	MimeType      string                  `json:"mime_type"`
	Viewport      Viewport                `json:"viewport"`
}

// Session is one open editor. All methods are safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	id       string
	source   *imaging.ImageSource
	img      *image.NRGBA
	pipeline *imaging.Pipeline
	viewport Viewport
	log      *zap.Logger

	adjust   imaging.ColorAdjustment
	rotation int
	cropping bool
	rect     imaging.CropRect
	drag     *Gesture
	closed   bool
}

// NewSession creates an idle session over a decoded source. A zero viewport
// defaults to the image's natural size.
func NewSession(id string, src *imaging.ImageSource, img *image.NRGBA, pipeline *imaging.Pipeline, vp Viewport, log *zap.Logger) *Session {
	if !vp.Valid() {
		vp = Viewport{Width: float64(img.Bounds().Dx()), Height: float64(img.Bounds().Dy())}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		id:       id,
		source:   src,
		img:      img,
		pipeline: pipeline,
		viewport: vp,
		log:      log.With(zap.String("session", id)),
	}
	s.resetLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		SessionID:     s.id,
		Mode:          ModeIdle,
		Rotation:      s.rotation,
		Adjust:        s.adjust,
		Cropping:      s.cropping,
		CropRect:      s.rect,
		CropAvailable: s.rotation == 0,
		Width:         s.img.Bounds().Dx(),
		Height:        s.img.Bounds().Dy(),
		MimeType:      s.source.MimeType(),
		Viewport:      s.viewport,
	}
	if s.cropping {
		st.Mode = ModeCropping
	}
	if s.drag != nil {
		st.Mode = ModeDragging
		st.Drag = s.drag.Kind
	}
	if !st.CropAvailable {
		st.Notice = CropNotice
	}
	return st
}

// Rotate adds delta degrees. Rotation is kept in [0, 360). Leaving rotation
// 0 while cropping turns crop mode off.
func (s *Session) Rotate(delta int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}

	s.rotation = imaging.NormalizeRotation(s.rotation + delta)
	if s.rotation != 0 && s.cropping {
		s.disableCropLocked()
		s.log.Debug("crop mode disabled by rotation", zap.Int("rotation", s.rotation))
	}
	return s.stateLocked(), nil
}

// RotateLeft rotates 90 degrees counter-clockwise.
func (s *Session) RotateLeft() (State, error) { return s.Rotate(-90) }

// RotateRight rotates 90 degrees clockwise.
func (s *Session) RotateRight() (State, error) { return s.Rotate(90) }

// SetAdjustment replaces the colour adjustment.
func (s *Session) SetAdjustment(adj imaging.ColorAdjustment) (State, error) {
	if err := adj.Validate(); err != nil {
		return State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	s.adjust = adj
	return s.stateLocked(), nil
}

// SetViewport updates the rendered container size used for drag math.
func (s *Session) SetViewport(vp Viewport) (State, error) {
	if !vp.Valid() {
		return State{}, ErrInvalidViewport
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	if s.drag != nil {
		return State{}, ErrDragInProgress
	}
	s.viewport = vp
	return s.stateLocked(), nil
}

// EnableCrop turns crop mode on, keeping the current rectangle.
func (s *Session) EnableCrop() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	if s.rotation != 0 {
		return State{}, imaging.ErrCropRequiresUpright
	}
	s.cropping = true
	return s.stateLocked(), nil
}

// DisableCrop turns crop mode off and drops any active gesture.
func (s *Session) DisableCrop() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	s.disableCropLocked()
	return s.stateLocked(), nil
}

func (s *Session) disableCropLocked() {
	s.cropping = false
	s.drag = nil
}

// HandlePointer feeds one pointer event into the crop state machine.
//
// A release ends any active gesture regardless of its target. Presses
// outside crop mode are rejected with ErrNotCropping; moves and releases
// with no active gesture are ignored.
func (s *Session) HandlePointer(ev PointerEvent) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}

	p := Point{X: ev.X, Y: ev.Y}
	switch ev.Type {
	case PointerDown:
		if !s.cropping {
			return State{}, ErrNotCropping
		}
		switch ev.Target {
		case TargetBody:
			g := BeginGesture(DragMove, p, s.rect, s.viewport)
			s.drag = &g
		case TargetHandle:
			g := BeginGesture(DragResizeSE, p, s.rect, s.viewport)
			s.drag = &g
		}
	case PointerMove:
		if s.drag != nil {
			s.rect = s.drag.Update(p)
		}
	case PointerUp:
		if s.drag != nil {
			s.rect = s.drag.Update(p)
			s.drag = nil
		}
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownPointer, ev.Type)
	}
	return s.stateLocked(), nil
}

// SuggestCrop replaces the crop rectangle with one enclosing the detected
// page content.
func (s *Session) SuggestCrop() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	if s.rotation != 0 {
		return State{}, imaging.ErrCropRequiresUpright
	}
	if s.drag != nil {
		return State{}, ErrDragInProgress
	}
	s.rect = imaging.SuggestCropRect(s.img, 2)
	return s.stateLocked(), nil
}

// Reset restores the identity adjustment, rotation 0, crop mode off and
// the default crop rectangle.
func (s *Session) Reset() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrSessionClosed
	}
	s.resetLocked()
	return s.stateLocked(), nil
}

func (s *Session) resetLocked() {
	s.adjust = imaging.IdentityAdjustment()
	s.rotation = 0
	s.cropping = false
	s.rect = imaging.DefaultCropRect()
	s.drag = nil
}

// Save runs the pipeline with the current edits. The crop applies only in
// crop mode. On success the result becomes the session's source and the
// edits are reset; on failure the session is left unchanged.
func (s *Session) Save(ctx context.Context) (*imaging.EditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edit := imaging.Edit{Rotation: s.rotation, Adjust: s.adjust}
	if s.cropping {
		rect := s.rect
		edit.Crop = &rect
	}

	res, err := s.pipeline.RunDecoded(s.img, s.source.MimeType(), edit)
	if err != nil {
		s.log.Warn("save failed", zap.Error(err))
		return nil, err
	}

	next := imaging.NewSource(res.Data, res.MimeType)
	img, err := imaging.Decode(ctx, next)
	if err != nil {
		return nil, err
	}

	s.log.Info("edit saved",
		zap.Int("rotation", s.rotation),
		zap.Bool("cropped", edit.Crop != nil),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.String("mime_type", res.MimeType))

	s.source = next
	s.img = img
	s.viewport = Viewport{Width: float64(res.Width), Height: float64(res.Height)}
	s.resetLocked()
	return res, nil
}

// Source returns the session's current image source.
func (s *Session) Source() *imaging.ImageSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Close ends the session. Later calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
	s.closed = true
}
