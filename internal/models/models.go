package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// a hub entity with independently typed attributes and state
type Entity[A any, S any] struct {
	Attributes  A         `json:"attributes"`
	State       S         `json:"state"`
	LastChanged time.Time `json:"last_changed"`
	LastUpdated time.Time `json:"last_updated"`
}

type SunState string

const (
	BelowHorizon SunState = "below_horizon"
	AboveHorizon SunState = "above_horizon"
)

func (s *SunState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch SunState(raw) {
	case BelowHorizon, AboveHorizon:
		*s = SunState(raw)
		return nil
	default:
		return fmt.Errorf("unknown sun state %q", raw)
	}
}

// attributes of the sun.sun entity, all in UTC
type SunAttributes struct {
	NextRising  time.Time `json:"next_rising"`
	NextSetting time.Time `json:"next_setting"`
	NextDawn    time.Time `json:"next_dawn"`
	NextDusk    time.Time `json:"next_dusk"`
}

type SunEntity = Entity[SunAttributes, SunState]

// the body returned by the hub after firing an event
type EventResult struct {
	Message string `json:"message"`
}

type EventKind string

const (
	Sunrise EventKind = "Sunrise"
	Sunset  EventKind = "Sunset"
	Dawn    EventKind = "Dawn"
	Dusk    EventKind = "Dusk"
)

// whether the camera should be in night vision once this transition has happened
func (k EventKind) ExpectsNightVision() bool {
	return k == Sunset || k == Dusk
}

// true for the transitions into daylight (sunrise/dawn)
func (k EventKind) IsDay() bool {
	return !k.ExpectsNightVision()
}

// a light transition reported by the hub; for sunrise/sunset Start == End,
// for dawn/dusk the window runs from dawn (dusk) to rising (setting)
type TransitionEvent struct {
	Kind  EventKind
	Start time.Time
	End   time.Time
}

func NewInstantEvent(kind EventKind, at time.Time) TransitionEvent {
	return TransitionEvent{Kind: kind, Start: at, End: at}
}

func NewWindowEvent(kind EventKind, start, end time.Time) TransitionEvent {
	return TransitionEvent{Kind: kind, Start: start, End: end}
}

func (e TransitionEvent) Before(other TransitionEvent) bool {
	return e.Start.Before(other.Start)
}

func (e TransitionEvent) String() string {
	return string(e.Kind)
}
