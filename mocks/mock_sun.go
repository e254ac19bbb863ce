package mocks

import (
	"context"

	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockSunSunStateProvider is a mock of sun.sunStateProvider
type MockSunSunStateProvider struct {
	mock.Mock
}

func (_m *MockSunSunStateProvider) SunState(ctx context.Context) (models.SunEntity, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(models.SunEntity), ret.Error(1)
}

func NewMockSunSunStateProvider(t testingT) *MockSunSunStateProvider {
	m := &MockSunSunStateProvider{}
	register(&m.Mock, t)
	return m
}
