package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type HubConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CameraConfig struct {
	// camera entity name, or the input_select name when InputSelect is set
	Name        string `mapstructure:"name"`
	InputSelect bool   `mapstructure:"input_select"`
	// optional runtime selection feed: "", "mqtt" or "stream"
	Feed         string `mapstructure:"feed"`
	MQTTTopic    string `mapstructure:"mqtt_topic"`
	SelectEntity string `mapstructure:"select_entity"`
}

type EventsConfig struct {
	Night string `mapstructure:"night"`
	Day   string `mapstructure:"day"`
}

type ScheduleConfig struct {
	Mode         string        `mapstructure:"mode"`
	Lead         time.Duration `mapstructure:"lead"`
	Interval     time.Duration `mapstructure:"interval"`
	PastDuePause time.Duration `mapstructure:"past_due_pause"`
	IdlePause    time.Duration `mapstructure:"idle_pause"`
	Threshold    float64       `mapstructure:"threshold"`
}

type RetryConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	WaitForHub    bool          `mapstructure:"wait_for_hub"`
	Min           time.Duration `mapstructure:"min"`
	Max           time.Duration `mapstructure:"max"`
	Budget        time.Duration `mapstructure:"budget"`
	WaitForHubMax time.Duration `mapstructure:"wait_for_hub_max"`
}

type SunConfig struct {
	Local       bool   `mapstructure:"local"`
	GeoLocation string `mapstructure:"geo_location"`
}

type MQTTConfig struct {
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}

type Config struct {
	Hub      HubConfig      `mapstructure:"hub"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Events   EventsConfig   `mapstructure:"events"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Sun      SunConfig      `mapstructure:"sun"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Log      LogConfig      `mapstructure:"log"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"url":          "hub.url",
	"token":        "hub.token",
	"camera":       "camera.name",
	"input-select": "camera.input_select",
	"night-event":  "events.night",
	"day-event":    "events.day",
	"interval":     "schedule.interval",
	"lead":         "schedule.lead",
	"threshold":    "schedule.threshold",
	"mode":         "schedule.mode",
	"debug":        "log.debug",
	"wait-for-hub": "retry.wait_for_hub",
	"retry":        "retry.enabled",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("hub.url", constants.DefaultHubURL)
	v.SetDefault("hub.token", "")
	v.SetDefault("hub.timeout", constants.DefaultRequestTimeout)

	v.SetDefault("camera.name", "")
	v.SetDefault("camera.input_select", false)
	v.SetDefault("camera.feed", constants.CameraFeedNone)
	v.SetDefault("camera.mqtt_topic", constants.DefaultMQTTTopic)
	v.SetDefault("camera.select_entity", "")

	v.SetDefault("events.night", constants.DefaultNightEvent)
	v.SetDefault("events.day", constants.DefaultDayEvent)

	v.SetDefault("schedule.mode", constants.ModeHorizon)
	v.SetDefault("schedule.lead", constants.DefaultLeadTime)
	v.SetDefault("schedule.interval", constants.DefaultPollInterval)
	v.SetDefault("schedule.past_due_pause", constants.DefaultPastDuePause)
	v.SetDefault("schedule.idle_pause", constants.DefaultIdlePause)
	v.SetDefault("schedule.threshold", constants.DefaultNightVisionThreshold)

	v.SetDefault("retry.enabled", false)
	v.SetDefault("retry.wait_for_hub", false)
	v.SetDefault("retry.min", constants.DefaultRetryMin)
	v.SetDefault("retry.max", constants.DefaultRetryMax)
	v.SetDefault("retry.budget", constants.DefaultRetryBudget)
	v.SetDefault("retry.wait_for_hub_max", constants.DefaultWaitForHubMax)

	v.SetDefault("sun.local", false)
	v.SetDefault("sun.geo_location", "")

	v.SetDefault("mqtt.broker", constants.DefaultMQTTBroker)
	v.SetDefault("mqtt.client_id", constants.DefaultMQTTClientID)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")

	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")
}

func NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("night-watch", pflag.ContinueOnError)
	fs.StringP("url", "u", constants.DefaultHubURL, "the Home Assistant url")
	fs.StringP("token", "t", "", "the access token for Home Assistant (env TOKEN)")
	fs.StringP("camera", "c", "", "the camera entity, or the input_select name with --input-select")
	fs.Bool("input-select", false, "resolve the camera from an input_select entity")
	fs.String("night-event", constants.DefaultNightEvent, "the event fired once it got dark")
	fs.String("day-event", constants.DefaultDayEvent, "the event fired once it got light")
	fs.Duration("interval", constants.DefaultPollInterval, "how often to check the camera while confirming")
	fs.Duration("lead", constants.DefaultLeadTime, "how long before an event to start checking the camera")
	fs.Float64("threshold", constants.DefaultNightVisionThreshold, "night vision threshold for the mean colour divergence")
	fs.String("mode", constants.ModeHorizon, "which events to follow: horizon (sunrise/sunset) or twilight (dawn/dusk)")
	fs.BoolP("debug", "d", false, "enable debug logging")
	fs.Bool("wait-for-hub", false, "block at startup until the hub is reachable")
	fs.Bool("retry", false, "retry transient hub failures on every request")
	fs.String("config", "", "path to a config file")
	return fs
}

// parses args and merges flags, environment and the config file (in that order of precedence)
func ReadConfig(args []string) (*Config, error) {
	fs := NewFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	v.SetEnvPrefix("NIGHT_WATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("hub.token", "NIGHT_WATCH_HUB_TOKEN", "TOKEN"); err != nil {
		return nil, err
	}

	configFile, _ := fs.GetString("config")
	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.AddConfigPath("/etc/night-watch/")
	v.AddConfigPath("$HOME/.config/night-watch/")
	v.AddConfigPath(".")
	err := v.ReadInConfig()

	// the config file is optional when there is no explicit path
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Hub.URL == "" {
		errs = append(errs, errors.New("hub url is required"))
	}
	if c.Hub.Token == "" {
		errs = append(errs, errors.New("hub token is required (--token or TOKEN)"))
	}
	if c.Camera.Name == "" {
		errs = append(errs, errors.New("camera is required"))
	}

	switch c.Schedule.Mode {
	case constants.ModeHorizon, constants.ModeTwilight:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Schedule.Mode))
	}

	if c.Schedule.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}
	if c.Schedule.Lead < 0 {
		errs = append(errs, errors.New("lead must not be negative"))
	}
	if c.Schedule.Threshold < 0 {
		errs = append(errs, errors.New("threshold must not be negative"))
	}

	if c.Retry.Min <= 0 || c.Retry.Max < c.Retry.Min {
		errs = append(errs, errors.New("retry window must satisfy 0 < min <= max"))
	}

	switch c.Camera.Feed {
	case constants.CameraFeedNone, constants.CameraFeedMQTT:
	case constants.CameraFeedStream:
		if c.Camera.SelectEntity == "" {
			errs = append(errs, errors.New("camera.select_entity is required for the stream feed"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown camera feed %q", c.Camera.Feed))
	}

	if c.Camera.Feed != constants.CameraFeedNone && c.Camera.InputSelect {
		errs = append(errs, errors.New("a camera feed cannot be combined with --input-select"))
	}

	if c.Sun.Local && c.Sun.GeoLocation == "" {
		errs = append(errs, errors.New("sun.geo_location is required for the local sun"))
	}

	return errors.Join(errs...)
}
