package retry_test

import (
	"context"
	"errors"
	"image"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/adriankumpf/night-watch/internal/hass"
	"github.com/adriankumpf/night-watch/internal/models"
	"github.com/adriankumpf/night-watch/internal/retry"
	"github.com/adriankumpf/night-watch/mocks"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

// fires immediately, advancing the clock by the requested delay
type fakeTimer struct {
	c         chan time.Time
	clock     *fakeClock
	durations []time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{
		c:     make(chan time.Time, 1),
		clock: &fakeClock{now: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func (f *fakeTimer) Start(d time.Duration) {
	f.durations = append(f.durations, d)
	f.clock.now = f.clock.now.Add(d)
	f.c <- f.clock.now
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time {
	return f.c
}

var errRefused = errors.Join(errors.New("dial tcp 127.0.0.1:8123"), syscall.ECONNREFUSED)

func newLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func newPolicy(timer *fakeTimer, budget time.Duration) *retry.Policy {
	return retry.NewPolicy(newLogger(), time.Second, 10*time.Second, budget,
		retry.WithTimer(timer), retry.WithClock(timer.clock))
}

// fails with err for the first n calls
func failing(n int, err error, attempts *int) func() error {
	return func() error {
		*attempts++
		if *attempts <= n {
			return err
		}
		return nil
	}
}

func Test_Do(t *testing.T) {

	t.Run("should succeed on attempt N+1 after N transient failures", func(t *testing.T) {
		for _, n := range []int{0, 1, 3, 7} {
			timer := newFakeTimer()
			attempts := 0

			err := newPolicy(timer, 2*time.Minute).Do(context.Background(), failing(n, errRefused, &attempts))

			require.NoError(t, err)
			assert.Equal(t, n+1, attempts)
			require.Len(t, timer.durations, n)
			for i, d := range timer.durations {
				assert.GreaterOrEqual(t, d, time.Second)
				assert.LessOrEqual(t, d, 10*time.Second)
				if i > 0 {
					assert.GreaterOrEqual(t, d, timer.durations[i-1])
				}
			}
		}
	})

	t.Run("should double the delay up to the maximum", func(t *testing.T) {
		timer := newFakeTimer()
		attempts := 0

		err := newPolicy(timer, 2*time.Minute).Do(context.Background(), failing(6, errRefused, &attempts))

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			10 * time.Second,
			10 * time.Second,
		}, timer.durations)
	})

	t.Run("should not retry permanent failures", func(t *testing.T) {
		timer := newFakeTimer()
		attempts := 0
		unauthorized := &hass.StatusError{StatusCode: 401, Method: "GET", Path: "/api/"}

		err := newPolicy(timer, 2*time.Minute).Do(context.Background(), failing(5, unauthorized, &attempts))

		assert.Equal(t, 1, attempts)
		assert.Empty(t, timer.durations)
		assert.ErrorIs(t, err, unauthorized)
	})

	t.Run("should give up once the budget is spent", func(t *testing.T) {
		timer := newFakeTimer()
		attempts := 0

		err := newPolicy(timer, 2*time.Minute).Do(context.Background(), failing(1000, errRefused, &attempts))

		assert.ErrorIs(t, err, syscall.ECONNREFUSED)
		assert.Less(t, attempts, 1000)

		var total time.Duration
		for _, d := range timer.durations {
			total += d
		}
		assert.LessOrEqual(t, total, 2*time.Minute)
	})

	t.Run("should start over after a success", func(t *testing.T) {
		timer := newFakeTimer()
		policy := newPolicy(timer, 2*time.Minute)

		attempts := 0
		require.NoError(t, policy.Do(context.Background(), failing(3, errRefused, &attempts)))
		attempts = 0
		require.NoError(t, policy.Do(context.Background(), failing(1, errRefused, &attempts)))

		// the second call starts again at the minimum delay
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, time.Second}, timer.durations)
	})

	t.Run("should stop when the context is cancelled", func(t *testing.T) {
		timer := newFakeTimer()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		attempts := 0

		err := newPolicy(timer, 2*time.Minute).Do(ctx, failing(1000, errRefused, &attempts))

		assert.Error(t, err)
		assert.Less(t, attempts, 3)
	})
}

func Test_DoValue(t *testing.T) {

	timer := newFakeTimer()
	calls := 0

	v, err := retry.DoValue(context.Background(), newPolicy(timer, time.Minute), func() (string, error) {
		calls++
		if calls == 1 {
			return "", &hass.StatusError{StatusCode: 404}
		}
		return "garden", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "garden", v)
	assert.Equal(t, 2, calls)
}

func Test_WaitForHub(t *testing.T) {

	t.Run("should block until the hub answers", func(t *testing.T) {
		timer := newFakeTimer()
		attempts := 0

		err := retry.WaitForHub(context.Background(), newLogger(), time.Second, time.Minute, func(_ context.Context) error {
			attempts++
			if attempts <= 10 {
				return errRefused
			}
			return nil
		}, retry.WithTimer(timer), retry.WithClock(timer.clock))

		require.NoError(t, err)
		assert.Equal(t, 11, attempts)
		// the delay never exceeds the maximum, however long it takes
		assert.Equal(t, time.Minute, timer.durations[len(timer.durations)-1])
	})

	t.Run("should fail fast on a rejected token", func(t *testing.T) {
		timer := newFakeTimer()
		attempts := 0

		err := retry.WaitForHub(context.Background(), newLogger(), time.Second, time.Minute, func(_ context.Context) error {
			attempts++
			return &hass.StatusError{StatusCode: 401}
		}, retry.WithTimer(timer), retry.WithClock(timer.clock))

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}

func Test_Hub(t *testing.T) {

	notFound := &hass.StatusError{StatusCode: 404, Method: "GET", Path: "/api/camera_proxy/camera.garden"}

	t.Run("should retry a missing camera", func(t *testing.T) {
		// arrange
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		inner := mocks.NewMockHubClient(t)
		inner.On("GetCameraImage", mock.Anything, "garden").Return(nil, notFound).Twice()
		inner.On("GetCameraImage", mock.Anything, "garden").Return(img, nil).Once()
		timer := newFakeTimer()

		// act
		got, err := retry.NewHub(inner, newPolicy(timer, time.Minute)).GetCameraImage(context.Background(), "garden")

		// assert
		require.NoError(t, err)
		assert.Same(t, img, got)
		assert.Len(t, timer.durations, 2)
	})

	t.Run("should retry events while the hub is down", func(t *testing.T) {
		inner := mocks.NewMockHubClient(t)
		inner.On("SendEvent", mock.Anything, "open_rollershutters").Return(models.EventResult{}, errRefused).Once()
		inner.On("SendEvent", mock.Anything, "open_rollershutters").Return(models.EventResult{Message: "Event open_rollershutters fired."}, nil).Once()

		result, err := retry.NewHub(inner, newPolicy(newFakeTimer(), time.Minute)).SendEvent(context.Background(), "open_rollershutters")

		require.NoError(t, err)
		assert.Equal(t, "Event open_rollershutters fired.", result.Message)
	})

	t.Run("should surface malformed responses at once", func(t *testing.T) {
		inner := mocks.NewMockHubClient(t)
		inner.On("GetState", mock.Anything, "sun.sun", mock.Anything).Return(hass.ErrMalformedResponse).Once()

		var entity models.SunEntity
		err := retry.NewHub(inner, newPolicy(newFakeTimer(), time.Minute)).GetState(context.Background(), "sun.sun", &entity)

		assert.ErrorIs(t, err, hass.ErrMalformedResponse)
	})
}
