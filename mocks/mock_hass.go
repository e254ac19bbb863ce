package mocks

import (
	"context"
	"image"

	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockStateGetter is a mock of hass.StateGetter
type MockStateGetter struct {
	mock.Mock
}

func (_m *MockStateGetter) GetState(ctx context.Context, entityID string, v any) error {
	ret := _m.Called(ctx, entityID, v)
	return ret.Error(0)
}

func NewMockStateGetter(t testingT) *MockStateGetter {
	m := &MockStateGetter{}
	register(&m.Mock, t)
	return m
}

// MockHubClient is a mock of the full hub client
type MockHubClient struct {
	mock.Mock
}

func (_m *MockHubClient) GetState(ctx context.Context, entityID string, v any) error {
	ret := _m.Called(ctx, entityID, v)
	return ret.Error(0)
}

func (_m *MockHubClient) GetCameraImage(ctx context.Context, camera string) (image.Image, error) {
	ret := _m.Called(ctx, camera)

	var r0 image.Image
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(image.Image)
	}
	return r0, ret.Error(1)
}

func (_m *MockHubClient) SendEvent(ctx context.Context, event string) (models.EventResult, error) {
	ret := _m.Called(ctx, event)
	return ret.Get(0).(models.EventResult), ret.Error(1)
}

func NewMockHubClient(t testingT) *MockHubClient {
	m := &MockHubClient{}
	register(&m.Mock, t)
	return m
}
