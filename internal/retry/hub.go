package retry

import (
	"context"
	"image"

	"github.com/adriankumpf/night-watch/internal/models"
)

type hubClient interface {
	GetState(ctx context.Context, entityID string, v any) error
	GetCameraImage(ctx context.Context, camera string) (image.Image, error)
	SendEvent(ctx context.Context, event string) (models.EventResult, error)
}

// Hub applies a Policy to every request of the wrapped hub client.
type Hub struct {
	hub    hubClient
	policy *Policy
}

func NewHub(hub hubClient, policy *Policy) *Hub {
	return &Hub{hub: hub, policy: policy}
}

func (h *Hub) GetState(ctx context.Context, entityID string, v any) error {
	return h.policy.Do(ctx, func() error {
		return h.hub.GetState(ctx, entityID, v)
	})
}

func (h *Hub) GetCameraImage(ctx context.Context, camera string) (image.Image, error) {
	return DoValue(ctx, h.policy, func() (image.Image, error) {
		return h.hub.GetCameraImage(ctx, camera)
	})
}

func (h *Hub) SendEvent(ctx context.Context, event string) (models.EventResult, error) {
	return DoValue(ctx, h.policy, func() (models.EventResult, error) {
		return h.hub.SendEvent(ctx, event)
	})
}
