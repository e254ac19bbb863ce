package scheduler

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/charmbracelet/log"
)

type transitionSource interface {
	Upcoming(ctx context.Context) ([]models.TransitionEvent, error)
}

type cameraSource interface {
	Resolve(ctx context.Context) (string, error)
}

type imageFetcher interface {
	GetCameraImage(ctx context.Context, camera string) (image.Image, error)
}

type nightVisionClassifier interface {
	NightVision(img image.Image) bool
}

type eventSender interface {
	SendEvent(ctx context.Context, event string) (models.EventResult, error)
}

type Options struct {
	NightEvent string
	DayEvent   string
	// how long before an event the camera checks start
	Lead         time.Duration
	PollInterval time.Duration
	// pause before starting over when the hub reported an elapsed event
	PastDuePause time.Duration
	// pause before starting over when every event was already handled
	IdlePause time.Duration
}

type State int

const (
	Idle State = iota
	AwaitingEvent
	WaitingNearEvent
	ConfirmingTransition
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingEvent:
		return "awaiting event"
	case WaitingNearEvent:
		return "waiting near event"
	case ConfirmingTransition:
		return "confirming transition"
	case Dispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Scheduler waits for the next light transition, confirms it on the camera
// and fires the matching automation event exactly once.
type Scheduler struct {
	logger     *log.Logger
	opts       Options
	source     transitionSource
	camera     cameraSource
	images     imageFetcher
	classifier nightVisionClassifier
	events     eventSender
	clock      Clock

	state       State
	lastHandled *models.EventKind
}

func NewScheduler(
	logger *log.Logger,
	opts Options,
	source transitionSource,
	camera cameraSource,
	images imageFetcher,
	classifier nightVisionClassifier,
	events eventSender,
	clock Clock,
) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		logger:     logger,
		opts:       opts,
		source:     source,
		camera:     camera,
		images:     images,
		classifier: classifier,
		events:     events,
		clock:      clock,
	}
}

func (s *Scheduler) State() State {
	return s.state
}

// the kind of the last event fired, if any
func (s *Scheduler) LastHandled() (models.EventKind, bool) {
	if s.lastHandled == nil {
		return "", false
	}
	return *s.lastHandled, true
}

// Run handles events until a cycle fails or ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Debug("Scheduler.Run")
	for {
		if err := s.RunCycle(ctx); err != nil {
			return err
		}
	}
}

// RunCycle fetches the upcoming events and handles them in order.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	s.setState(Idle)

	events, err := s.source.Upcoming(ctx)
	if err != nil {
		return fmt.Errorf("error reading upcoming events: %w", err)
	}

	handled := 0
	for _, event := range events {
		if s.lastHandled != nil && *s.lastHandled == event.Kind {
			s.logger.Debug("Skipping event, it was just handled", "kind", event.Kind)
			continue
		}

		s.setState(AwaitingEvent)

		until := event.Start.Sub(s.clock.Now())
		if until <= 0 {
			s.logger.Warn("Event is already in the past, starting over", "kind", event.Kind, "at", event.Start, "pause", s.opts.PastDuePause)
			s.setState(Idle)
			return s.clock.Sleep(ctx, s.opts.PastDuePause)
		}

		s.logger.Infof("Next %s in %.1f hours", event.Kind, until.Hours())

		if err := s.clock.Sleep(ctx, until-s.opts.Lead); err != nil {
			return err
		}

		if err := s.confirm(ctx, event); err != nil {
			return err
		}

		if err := s.dispatch(ctx, event); err != nil {
			return err
		}
		handled++
	}

	s.setState(Idle)

	if handled == 0 {
		return s.clock.Sleep(ctx, s.opts.IdlePause)
	}
	return nil
}

func (s *Scheduler) confirm(ctx context.Context, event models.TransitionEvent) error {
	s.setState(WaitingNearEvent)
	s.logger.Infof("%s in %d minutes", event.Kind, int(event.End.Sub(s.clock.Now()).Minutes()))

	s.setState(ConfirmingTransition)
	expected := event.Kind.ExpectsNightVision()

	for {
		// the camera may change between polls
		camera, err := s.camera.Resolve(ctx)
		if err != nil {
			return fmt.Errorf("error resolving camera: %w", err)
		}

		img, err := s.images.GetCameraImage(ctx, camera)
		if err != nil {
			return fmt.Errorf("error confirming %s: %w", event.Kind, err)
		}

		if s.classifier.NightVision(img) == expected {
			return nil
		}

		if err := s.clock.Sleep(ctx, s.opts.PollInterval); err != nil {
			return err
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, event models.TransitionEvent) error {
	s.setState(Dispatching)

	name := s.opts.NightEvent
	if event.Kind.IsDay() {
		name = s.opts.DayEvent
	}

	result, err := s.events.SendEvent(ctx, name)
	if err != nil {
		return fmt.Errorf("error dispatching %s: %w", name, err)
	}

	kind := event.Kind
	s.lastHandled = &kind

	skew := int(s.clock.Now().Sub(event.End).Minutes())
	s.logger.Info(result.Message, "kind", event.Kind, "event", name, "skew", fmt.Sprintf("%+dm", skew))

	return nil
}

func (s *Scheduler) setState(state State) {
	if s.state != state {
		s.logger.Debug("Scheduler state", "from", s.state, "to", state)
	}
	s.state = state
}
