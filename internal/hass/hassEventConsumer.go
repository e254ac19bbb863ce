package hass

import (
	"context"
	"encoding/json"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/charmbracelet/log"
	sse "github.com/r3labs/sse/v2"
)

// an event received from the hub event stream
type StreamEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		EntityID string `json:"entity_id"`
		NewState *struct {
			State string `json:"state"`
		} `json:"new_state"`
	} `json:"data"`
}

// follows the state of a single entity over the hub event stream
type HassEventConsumer struct {
	logger   *log.Logger
	url      string
	token    string
	entityID string
	onState  func(state string)

	client       *sse.Client
	eventChannel chan *sse.Event
}

func NewHassEventConsumer(logger *log.Logger, api *HassAPIService, entityID string, onState func(state string)) *HassEventConsumer {
	return &HassEventConsumer{
		logger:   logger,
		url:      api.BaseURL().JoinPath(constants.EventStreamPath).String(),
		token:    api.Token(),
		entityID: entityID,
		onState:  onState,
	}
}

func (h *HassEventConsumer) Subscribe(ctx context.Context) error {
	h.eventChannel = make(chan *sse.Event)
	h.client = sse.NewClient(h.url)
	h.client.Headers["Authorization"] = "Bearer " + h.token

	h.client.OnConnect(func(_ *sse.Client) {
		h.logger.Info("Connected to hub event stream", "entity", h.entityID)
	})
	h.client.OnDisconnect(func(_ *sse.Client) {
		h.logger.Warn("Disconnected from hub event stream")
	})

	if err := h.client.SubscribeChanWithContext(ctx, "", h.eventChannel); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				// the client closes the stream itself once ctx is done
				return
			case event, ok := <-h.eventChannel:
				if !ok {
					return
				}
				h.HandleEvent(event)
			}
		}
	}()

	return nil
}

func (h *HassEventConsumer) Unsubscribe() {
	h.logger.Debug("Unsubscribe hub events")
	h.client.Unsubscribe(h.eventChannel)
}

func (h *HassEventConsumer) HandleEvent(event *sse.Event) {
	evt := StreamEvent{}
	if err := json.Unmarshal(event.Data, &evt); err != nil {
		// keep-alive pings are plain text
		h.logger.Debug("ignoring non json stream message", "data", string(event.Data))
		return
	}

	if evt.EventType != constants.EventTypeStateChanged || evt.Data.EntityID != h.entityID {
		return
	}

	if evt.Data.NewState == nil || evt.Data.NewState.State == "" {
		h.logger.Warn("entity has no state anymore, keeping the current camera", "entity", h.entityID)
		return
	}

	h.logger.Debug("entity changed", "entity", h.entityID, "state", evt.Data.NewState.State)
	h.onState(evt.Data.NewState.State)
}
