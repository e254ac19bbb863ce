package mocks

import (
	"context"
	"image"

	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSchedulerTransitionSource is a mock of scheduler.transitionSource
type MockSchedulerTransitionSource struct {
	mock.Mock
}

func (_m *MockSchedulerTransitionSource) Upcoming(ctx context.Context) ([]models.TransitionEvent, error) {
	ret := _m.Called(ctx)

	var r0 []models.TransitionEvent
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.TransitionEvent)
	}
	return r0, ret.Error(1)
}

func NewMockSchedulerTransitionSource(t testingT) *MockSchedulerTransitionSource {
	m := &MockSchedulerTransitionSource{}
	register(&m.Mock, t)
	return m
}

// MockSchedulerCameraSource is a mock of scheduler.cameraSource
type MockSchedulerCameraSource struct {
	mock.Mock
}

func (_m *MockSchedulerCameraSource) Resolve(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)
	return ret.String(0), ret.Error(1)
}

func NewMockSchedulerCameraSource(t testingT) *MockSchedulerCameraSource {
	m := &MockSchedulerCameraSource{}
	register(&m.Mock, t)
	return m
}

// MockSchedulerImageFetcher is a mock of scheduler.imageFetcher
type MockSchedulerImageFetcher struct {
	mock.Mock
}

func (_m *MockSchedulerImageFetcher) GetCameraImage(ctx context.Context, camera string) (image.Image, error) {
	ret := _m.Called(ctx, camera)

	var r0 image.Image
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(image.Image)
	}
	return r0, ret.Error(1)
}

func NewMockSchedulerImageFetcher(t testingT) *MockSchedulerImageFetcher {
	m := &MockSchedulerImageFetcher{}
	register(&m.Mock, t)
	return m
}

// MockSchedulerNightVisionClassifier is a mock of scheduler.nightVisionClassifier
type MockSchedulerNightVisionClassifier struct {
	mock.Mock
}

func (_m *MockSchedulerNightVisionClassifier) NightVision(img image.Image) bool {
	ret := _m.Called(img)
	return ret.Bool(0)
}

func NewMockSchedulerNightVisionClassifier(t testingT) *MockSchedulerNightVisionClassifier {
	m := &MockSchedulerNightVisionClassifier{}
	register(&m.Mock, t)
	return m
}

// MockSchedulerEventSender is a mock of scheduler.eventSender
type MockSchedulerEventSender struct {
	mock.Mock
}

func (_m *MockSchedulerEventSender) SendEvent(ctx context.Context, event string) (models.EventResult, error) {
	ret := _m.Called(ctx, event)
	return ret.Get(0).(models.EventResult), ret.Error(1)
}

func NewMockSchedulerEventSender(t testingT) *MockSchedulerEventSender {
	m := &MockSchedulerEventSender{}
	register(&m.Mock, t)
	return m
}
