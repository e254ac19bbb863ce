package camera

import (
	"fmt"
	"strings"
	"time"

	"github.com/adriankumpf/night-watch/internal/config"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttConnectTimeout = 10 * time.Second
const mqttDisconnectQuiesce = 250

// MQTTFeed selects the camera from the payload of messages on a topic.
type MQTTFeed struct {
	logger *log.Logger
	cfg    config.MQTTConfig
	topic  string
	camera *Shared

	client mqtt.Client
}

func NewMQTTFeed(logger *log.Logger, cfg config.MQTTConfig, topic string, camera *Shared) *MQTTFeed {
	return &MQTTFeed{logger: logger, cfg: cfg, topic: topic, camera: camera}
}

func (f *MQTTFeed) Connect() error {
	opts := mqtt.NewClientOptions().AddBroker(f.cfg.Broker)
	opts.SetClientID(f.cfg.ClientID)
	opts.SetUsername(f.cfg.Username)
	opts.SetPassword(f.cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	// subscribe again after every reconnect
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.Subscribe(f.topic, 1, f.HandleMessage); token.Wait() && token.Error() != nil {
			f.logger.Error("Failed to subscribe", "topic", f.topic, "err", token.Error())
			return
		}
		f.logger.Info("Listening for camera changes", "topic", f.topic)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		f.logger.Warn("Lost connection to MQTT broker", "err", err)
	})

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = time.Minute

	err := backoff.Retry(func() error {
		f.client = mqtt.NewClient(opts)
		token := f.client.Connect()
		if !token.WaitTimeout(mqttConnectTimeout) {
			return fmt.Errorf("timeout connecting to %s", f.cfg.Broker)
		}
		if err := token.Error(); err != nil {
			f.logger.Warn("Failed to connect to MQTT broker", "broker", f.cfg.Broker, "err", err)
			return err
		}
		return nil
	}, bo)
	if err != nil {
		return fmt.Errorf("could not connect to MQTT broker %s: %w", f.cfg.Broker, err)
	}

	return nil
}

func (f *MQTTFeed) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	name := strings.TrimSpace(string(msg.Payload()))
	if name == "" {
		f.logger.Warn("Ignoring empty camera selection", "topic", msg.Topic())
		return
	}

	if f.camera.Set(name) {
		f.logger.Info("Camera changed", "camera", name)
	}
}

func (f *MQTTFeed) Disconnect() {
	if f.client == nil {
		return
	}
	if token := f.client.Unsubscribe(f.topic); token.Wait() && token.Error() != nil {
		f.logger.Error(token.Error())
	}
	f.client.Disconnect(mqttDisconnectQuiesce)
}
