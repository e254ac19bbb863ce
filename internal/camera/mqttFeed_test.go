package camera_test

import (
	"os"
	"testing"

	"github.com/adriankumpf/night-watch/internal/camera"
	"github.com/adriankumpf/night-watch/internal/config"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func newFeed(shared *camera.Shared) *camera.MQTTFeed {
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
	return camera.NewMQTTFeed(logger, config.MQTTConfig{Broker: "tcp://localhost:1883"}, "night-watch/camera", shared)
}

func Test_MQTTFeed_HandleMessage(t *testing.T) {

	t.Run("should switch to the camera in the payload", func(t *testing.T) {
		shared := camera.NewShared("garden")

		newFeed(shared).HandleMessage(nil, fakeMessage{topic: "night-watch/camera", payload: []byte("street\n")})

		assert.Equal(t, "street", shared.Get())
	})

	t.Run("should ignore empty payloads", func(t *testing.T) {
		shared := camera.NewShared("garden")

		newFeed(shared).HandleMessage(nil, fakeMessage{topic: "night-watch/camera", payload: []byte("  ")})

		assert.Equal(t, "garden", shared.Get())
	})

	t.Run("should select a camera when none was configured", func(t *testing.T) {
		shared := camera.NewShared("")
		feed := newFeed(shared)

		feed.HandleMessage(nil, fakeMessage{topic: "night-watch/camera", payload: []byte("driveway")})
		feed.HandleMessage(nil, fakeMessage{topic: "night-watch/camera", payload: []byte("driveway")})

		assert.Equal(t, "driveway", shared.Get())
	})
}

func Test_MQTTFeed_Disconnect(t *testing.T) {
	// never connected
	assert.NotPanics(t, func() { newFeed(camera.NewShared("")).Disconnect() })
}
