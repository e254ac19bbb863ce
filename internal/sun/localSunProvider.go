package sun

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/nathan-osman/go-sunrise"
)

// how many days ahead to look for the next event (polar day/night)
const maxSearchDays = 366

var ErrNoSunEvent = errors.New("sun: no upcoming sun event")

// computes the sun.sun equivalent locally, for hubs without the sun integration
type LocalSunProvider struct {
	lat, lng float64
	now      func() time.Time
}

func NewLocalSunProvider(geoLocation string, now func() time.Time) (*LocalSunProvider, error) {
	lat, lng, err := ParseGeoLocation(geoLocation)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &LocalSunProvider{lat: lat, lng: lng, now: now}, nil
}

// ParseGeoLocation parses "lat,lng", e.g. "52.52,13.40"
func ParseGeoLocation(geoLocation string) (float64, float64, error) {
	latLng := strings.Split(geoLocation, ",")
	if len(latLng) != 2 {
		return 0, 0, fmt.Errorf("invalid geo location %q, expected lat,lng", geoLocation)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latLng[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("invalid latitude in %q", geoLocation)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(latLng[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("invalid longitude in %q", geoLocation)
	}
	return lat, lng, nil
}

func (p *LocalSunProvider) SunState(_ context.Context) (models.SunEntity, error) {
	now := p.now().UTC()

	rising, setting, err := p.nextEvents(now, func(y int, m time.Month, d int) (time.Time, time.Time) {
		return sunrise.SunriseSunset(p.lat, p.lng, y, m, d)
	})
	if err != nil {
		return models.SunEntity{}, err
	}

	dawn, dusk, err := p.nextEvents(now, func(y int, m time.Month, d int) (time.Time, time.Time) {
		return sunrise.TimeOfElevation(p.lat, p.lng, constants.CivilTwilightElevation, y, m, d)
	})
	if err != nil {
		return models.SunEntity{}, err
	}

	// the sun is up when it sets before it rises again
	state := models.BelowHorizon
	if setting.Before(rising) {
		state = models.AboveHorizon
	}

	return models.SunEntity{
		Attributes: models.SunAttributes{
			NextRising:  rising,
			NextSetting: setting,
			NextDawn:    dawn,
			NextDusk:    dusk,
		},
		State:       state,
		LastChanged: now,
		LastUpdated: now,
	}, nil
}

// returns the first morning and evening times strictly after now
func (p *LocalSunProvider) nextEvents(now time.Time, calc func(int, time.Month, int) (time.Time, time.Time)) (time.Time, time.Time, error) {
	var morning, evening time.Time

	// start a day early, the UTC date may lag the local one
	for i := -1; i <= maxSearchDays && (morning.IsZero() || evening.IsZero()); i++ {
		day := time.Date(now.Year(), now.Month(), now.Day()+i, 0, 0, 0, 0, time.UTC)
		m, e := calc(day.Year(), day.Month(), day.Day())

		if morning.IsZero() && !m.IsZero() && m.After(now) {
			morning = m
		}
		if evening.IsZero() && !e.IsZero() && e.After(now) {
			evening = e
		}
	}

	if morning.IsZero() || evening.IsZero() {
		return time.Time{}, time.Time{}, ErrNoSunEvent
	}
	return morning.UTC(), evening.UTC(), nil
}
