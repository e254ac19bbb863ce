package main

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/adriankumpf/night-watch/internal/camera"
	"github.com/adriankumpf/night-watch/internal/config"
	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/hass"
	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/adriankumpf/night-watch/internal/retry"
	"github.com/adriankumpf/night-watch/internal/scheduler"
	"github.com/adriankumpf/night-watch/internal/sun"
	"github.com/adriankumpf/night-watch/internal/vision"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"
)

type hubClient interface {
	GetState(ctx context.Context, entityID string, v any) error
	GetCameraImage(ctx context.Context, camera string) (image.Image, error)
	SendEvent(ctx context.Context, event string) (models.EventResult, error)
}

type sunStateProvider interface {
	SunState(ctx context.Context) (models.SunEntity, error)
}

func main() {
	// secrets may live in a .env file next to the binary
	_ = godotenv.Load()

	// read the config
	cfg, err := config.ReadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("night-watch starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// create/wire up services
	api, err := hass.NewHassAPIService(logger, cfg.Hub.URL, cfg.Hub.Token, cfg.Hub.Timeout)
	if err != nil {
		logger.Fatal(err)
	}

	if cfg.Retry.WaitForHub {
		if err := retry.WaitForHub(ctx, logger, cfg.Retry.Min, cfg.Retry.WaitForHubMax, api.Ping); err != nil {
			logger.Fatal("Hub is not usable", "err", err)
		}
	}

	var hub hubClient = api
	if cfg.Retry.Enabled {
		hub = retry.NewHub(api, retry.NewPolicy(logger, cfg.Retry.Min, cfg.Retry.Max, cfg.Retry.Budget))
	}

	var sunProvider sunStateProvider = sun.NewHubSunProvider(hub)
	if cfg.Sun.Local {
		local, err := sun.NewLocalSunProvider(cfg.Sun.GeoLocation, nil)
		if err != nil {
			logger.Fatal(err)
		}
		sunProvider = local
	}
	sunService := sun.NewSunService(logger, sunProvider, cfg.Schedule.Mode)

	cameraSource, err := newCameraSource(ctx, logger, cfg, api, hub)
	if err != nil {
		logger.Fatal(err)
	}

	classifier := vision.NewClassifier(logger, cfg.Schedule.Threshold)

	s := scheduler.NewScheduler(
		logger,
		scheduler.Options{
			NightEvent:   cfg.Events.Night,
			DayEvent:     cfg.Events.Day,
			Lead:         cfg.Schedule.Lead,
			PollInterval: cfg.Schedule.Interval,
			PastDuePause: cfg.Schedule.PastDuePause,
			IdlePause:    cfg.Schedule.IdlePause,
		},
		sunService,
		cameraSource,
		hub,
		classifier,
		hub,
		nil,
	)

	logger.Info("Watching", "camera", cfg.Camera.Name, "mode", cfg.Schedule.Mode, "threshold", cfg.Schedule.Threshold)

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}

	logger.Info("night-watch is closing")
}

func newLogger(cfg config.LogConfig) *log.Logger {
	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename: cfg.File,
			MaxAge:   3,
		}
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "2006/01/02 15:04:05",
	})
}

func newCameraSource(ctx context.Context, logger *log.Logger, cfg *config.Config, api *hass.HassAPIService, hub hubClient) (camera.Source, error) {
	if cfg.Camera.InputSelect {
		return camera.NewSelect(hub, cfg.Camera.Name), nil
	}

	switch cfg.Camera.Feed {
	case constants.CameraFeedMQTT:
		shared := camera.NewShared(cfg.Camera.Name)
		feed := camera.NewMQTTFeed(logger, cfg.MQTT, cfg.Camera.MQTTTopic, shared)
		if err := feed.Connect(); err != nil {
			return nil, err
		}
		go func() {
			<-ctx.Done()
			feed.Disconnect()
		}()
		return shared, nil

	case constants.CameraFeedStream:
		shared := camera.NewShared(cfg.Camera.Name)
		consumer := hass.NewHassEventConsumer(logger, api, camera.InputSelectEntityID(cfg.Camera.SelectEntity), func(state string) {
			if shared.Set(state) {
				logger.Info("Camera changed", "camera", state)
			}
		})
		if err := consumer.Subscribe(ctx); err != nil {
			return nil, err
		}
		return shared, nil

	default:
		return camera.NewFixed(cfg.Camera.Name), nil
	}
}
