package sun

import (
	"context"
	"fmt"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/hass"
	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

type sunStateProvider interface {
	SunState(ctx context.Context) (models.SunEntity, error)
}

// reads sun.sun from the hub
type HubSunProvider struct {
	hub hass.StateGetter
}

func NewHubSunProvider(hub hass.StateGetter) *HubSunProvider {
	return &HubSunProvider{hub: hub}
}

func (p *HubSunProvider) SunState(ctx context.Context) (models.SunEntity, error) {
	return hass.GetEntity[models.SunAttributes, models.SunState](ctx, p.hub, constants.SunEntityID)
}

type SunService struct {
	logger   *log.Logger
	provider sunStateProvider
	mode     string
}

func NewSunService(logger *log.Logger, provider sunStateProvider, mode string) *SunService {
	return &SunService{logger: logger, provider: provider, mode: mode}
}

// NextEvents returns sunrise and sunset, the one relevant to the current sun
// state first: sunset while the sun is up, sunrise while it is down.
func (s *SunService) NextEvents(ctx context.Context) ([2]models.TransitionEvent, error) {
	sun, err := s.provider.SunState(ctx)
	if err != nil {
		return [2]models.TransitionEvent{}, err
	}

	sunrise := models.NewInstantEvent(models.Sunrise, sun.Attributes.NextRising)
	sunset := models.NewInstantEvent(models.Sunset, sun.Attributes.NextSetting)

	switch sun.State {
	case models.AboveHorizon:
		return [2]models.TransitionEvent{sunset, sunrise}, nil
	case models.BelowHorizon:
		return [2]models.TransitionEvent{sunrise, sunset}, nil
	default:
		return [2]models.TransitionEvent{}, fmt.Errorf("%w: sun state %q", hass.ErrMalformedResponse, sun.State)
	}
}

// NextWindow returns whichever of the dawn and dusk windows starts first.
func (s *SunService) NextWindow(ctx context.Context) (models.TransitionEvent, error) {
	sun, err := s.provider.SunState(ctx)
	if err != nil {
		return models.TransitionEvent{}, err
	}

	dawn := models.NewWindowEvent(models.Dawn, sun.Attributes.NextDawn, sun.Attributes.NextRising)
	dusk := models.NewWindowEvent(models.Dusk, sun.Attributes.NextDusk, sun.Attributes.NextSetting)

	return lo.MinBy([]models.TransitionEvent{dusk, dawn}, func(a, b models.TransitionEvent) bool {
		return a.Before(b)
	}), nil
}

// Upcoming returns the events to handle next for the configured mode.
func (s *SunService) Upcoming(ctx context.Context) ([]models.TransitionEvent, error) {
	if s.mode == constants.ModeTwilight {
		window, err := s.NextWindow(ctx)
		if err != nil {
			return nil, err
		}
		return []models.TransitionEvent{window}, nil
	}

	events, err := s.NextEvents(ctx)
	if err != nil {
		return nil, err
	}
	return events[:], nil
}
