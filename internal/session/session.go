// Package session holds the per-mode mutable state of an inspection: the
// committed calibration scale and the most recent detection results. Each
// inspection mode gets one session; everything else in the engine is a pure
// function of its arguments.
package session

import (
	"fmt"
	"sync"

	"rebar-inspect/internal/calib"
	"rebar-inspect/internal/detect"
	"rebar-inspect/internal/spacing"
)

// Mode identifies an inspection workflow.
type Mode int

const (
	ModeSlabWall Mode = iota
	ModeBeamColumn
	ModeColumnLongitudinal
	ModeBeamLongitudinal
	ModeMaterial
)

func (m Mode) String() string {
	switch m {
	case ModeSlabWall:
		return "slab_wall"
	case ModeBeamColumn:
		return "beam_column"
	case ModeColumnLongitudinal:
		return "column_longitudinal"
	case ModeBeamLongitudinal:
		return "beam_longitudinal"
	case ModeMaterial:
		return "material"
	default:
		return "unknown"
	}
}

// ParseMode maps a wire-format mode name to its Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{ModeSlabWall, ModeBeamColumn, ModeColumnLongitudinal, ModeBeamLongitudinal, ModeMaterial} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown inspection mode %q", s)
}

// Session is the state of one inspection mode. The committed scale has a
// single writer: only a completed, non-noise calibration gesture replaces
// it. A zero scale means uncalibrated.
type Session struct {
	mu sync.RWMutex

	mode       Mode
	scale      float64
	frame      calib.ReferenceFrame
	detections []detect.Detection
	segments   []spacing.Segment
}

// New creates an uncalibrated session for the given mode.
func New(mode Mode) *Session {
	return &Session{mode: mode}
}

// Mode returns the session's inspection mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// CommitCalibration derives a scale from the drawn reference frame and
// commits it. Noise gestures and invalid reference lengths are discarded:
// the previously committed scale (or uncalibrated state) stays in effect
// and committed reports false. Previously computed segments are not
// recomputed; the caller re-runs the check if it wants them under the new
// scale.
func (s *Session) CommitCalibration(frame calib.ReferenceFrame) (scale float64, committed bool) {
	if frame.Noise() {
		return s.Scale(), false
	}
	newScale, err := frame.Scale()
	if err != nil || newScale <= 0 {
		return s.Scale(), false
	}

	s.mu.Lock()
	s.frame = frame
	s.scale = newScale
	s.mu.Unlock()
	return newScale, true
}

// Scale returns the committed pixel-per-millimeter scale, or 0 when the
// session is uncalibrated.
func (s *Session) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// Calibrated reports whether a scale has been committed.
func (s *Session) Calibrated() bool {
	return s.Scale() > 0
}

// SetResults stores the latest detection run and its spacing segments.
func (s *Session) SetResults(dets []detect.Detection, segments []spacing.Segment) {
	s.mu.Lock()
	s.detections = dets
	s.segments = segments
	s.mu.Unlock()
}

// Results returns the most recent detections and segments.
func (s *Session) Results() ([]detect.Detection, []spacing.Segment) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detections, s.segments
}

// Reset discards the calibration and results, as when a new image is
// loaded.
func (s *Session) Reset() {
	s.mu.Lock()
	s.scale = 0
	s.frame = calib.ReferenceFrame{}
	s.detections = nil
	s.segments = nil
	s.mu.Unlock()
}

// Manager indexes sessions by mode, creating them on demand.
type Manager struct {
	mu       sync.Mutex
	sessions map[Mode]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[Mode]*Session)}
}

// Get returns the session for a mode, creating it if needed.
func (m *Manager) Get(mode Mode) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[mode]
	if !ok {
		s = New(mode)
		m.sessions[mode] = s
	}
	return s
}

// Reset clears the session for a mode, if one exists.
func (m *Manager) Reset(mode Mode) {
	m.mu.Lock()
	s, ok := m.sessions[mode]
	m.mu.Unlock()
	if ok {
		s.Reset()
	}
}
