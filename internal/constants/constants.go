package constants

import "time"

const DefaultHubURL = "http://localhost:8123"
const DefaultRequestTimeout = 10 * time.Second

// hub entities and endpoints
const SunEntityID = "sun.sun"
const InputSelectDomain = "input_select"
const CameraDomain = "camera"

const APIPath = "/api/"
const StatesPath = "/api/states/"
const CameraProxyPath = "/api/camera_proxy/"
const EventsPath = "/api/events/"
const EventStreamPath = "/api/stream"

const EventTypeStateChanged = "state_changed"

// automation events
const DefaultNightEvent = "close_rollershutters"
const DefaultDayEvent = "open_rollershutters"

// scheduling
const DefaultLeadTime = 45 * time.Minute
const DefaultPollInterval = 30 * time.Second
const DefaultPastDuePause = 5 * time.Second
const DefaultIdlePause = time.Minute

const ModeHorizon = "horizon"
const ModeTwilight = "twilight"

// night vision is assumed when the mean channel divergence drops below this
const DefaultNightVisionThreshold = 0.005

// retry
const DefaultRetryMin = time.Second
const DefaultRetryMax = 10 * time.Second
const DefaultRetryBudget = 2 * time.Minute
const DefaultWaitForHubMax = time.Minute

// camera feeds
const CameraFeedNone = ""
const CameraFeedMQTT = "mqtt"
const CameraFeedStream = "stream"

const DefaultMQTTBroker = "tcp://localhost:1883"
const DefaultMQTTClientID = "night-watch"
const DefaultMQTTTopic = "night-watch/camera"

// civil twilight, used for local dawn/dusk
const CivilTwilightElevation = -6.0
