package camera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/hass"
)

var ErrNoCamera = errors.New("camera: no camera selected")

// Source resolves the name of the camera to take the next snapshot from.
type Source interface {
	Resolve(ctx context.Context) (string, error)
}

// a camera given once at startup
type Fixed struct {
	name string
}

func NewFixed(name string) *Fixed {
	return &Fixed{name: name}
}

func (f *Fixed) Resolve(_ context.Context) (string, error) {
	return f.name, nil
}

// the camera named by the current option of an input_select entity
type Select struct {
	hub      hass.StateGetter
	entityID string
}

func NewSelect(hub hass.StateGetter, name string) *Select {
	return &Select{hub: hub, entityID: InputSelectEntityID(name)}
}

func (s *Select) EntityID() string {
	return s.entityID
}

func (s *Select) Resolve(ctx context.Context) (string, error) {
	entity, err := hass.GetEntity[map[string]any, string](ctx, s.hub, s.entityID)
	if err != nil {
		return "", err
	}
	if entity.State == "" {
		return "", fmt.Errorf("%w: %s has no option selected", ErrNoCamera, s.entityID)
	}
	return entity.State, nil
}

// InputSelectEntityID turns "camera" into "input_select.camera"; full entity
// ids are returned unchanged.
func InputSelectEntityID(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return constants.InputSelectDomain + "." + name
}

// Shared holds the camera chosen at runtime by a feed. Feeds call Set, the
// scheduler only resolves.
type Shared struct {
	mu   sync.RWMutex
	name string
}

func NewShared(initial string) *Shared {
	return &Shared{name: initial}
}

func (s *Shared) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Set replaces the camera, returning whether it changed.
func (s *Shared) Set(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == name {
		return false
	}
	s.name = name
	return true
}

func (s *Shared) Resolve(_ context.Context) (string, error) {
	name := s.Get()
	if name == "" {
		return "", ErrNoCamera
	}
	return name, nil
}
