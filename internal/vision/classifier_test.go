package vision_test

import (
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/adriankumpf/night-watch/internal/constants"
	"github.com/adriankumpf/night-watch/internal/vision"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func uniformImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newClassifier(threshold float64) *vision.Classifier {
	return vision.NewClassifier(log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel}), threshold)
}

func Test_NightVision_Grayscale(t *testing.T) {

	classifier := newClassifier(constants.DefaultNightVisionThreshold)

	for _, v := range []uint8{0, 1, 64, 128, 200, 255} {
		img := uniformImage(10, 10, color.RGBA{R: v, G: v, B: v, A: 255})
		assert.True(t, classifier.NightVision(img), "gray level %d", v)
	}

	t.Run("should treat a gradient of grays as night vision", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 256, 4))
		for y := 0; y < 4; y++ {
			for x := 0; x < 256; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(x)})
			}
		}
		assert.Equal(t, 0.0, classifier.Score(img))
		assert.True(t, classifier.NightVision(img))
	})
}

func Test_NightVision_MidGray(t *testing.T) {

	img := uniformImage(100, 100, color.RGBA{R: 128, G: 128, B: 128, A: 255})

	for _, threshold := range []float64{0, 0.001, 0.005, 1} {
		classifier := newClassifier(threshold)
		assert.Equal(t, 0.0, classifier.Score(img))
		assert.True(t, classifier.NightVision(img), "threshold %v", threshold)
	}
}

func Test_NightVision_Colour(t *testing.T) {

	tests := []struct {
		name     string
		colour   color.RGBA
		expected float64
	}{
		{
			name:   "pure red",
			colour: color.RGBA{R: 255, A: 255},
			// |255-0| + |255-0| + |0-0|
			expected: 510.0 / 765.0,
		},
		{
			name:     "slightly warm",
			colour:   color.RGBA{R: 130, G: 128, B: 126, A: 255},
			expected: 8.0 / 765.0,
		},
		{
			name:     "sky blue",
			colour:   color.RGBA{R: 135, G: 206, B: 235, A: 255},
			expected: 200.0 / 765.0,
		},
	}

	classifier := newClassifier(constants.DefaultNightVisionThreshold)

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := uniformImage(20, 10, test.colour)
			assert.InDelta(t, test.expected, classifier.Score(img), 1e-9)
			assert.False(t, classifier.NightVision(img))
		})
	}
}

func Test_NightVision_Threshold(t *testing.T) {

	// every pixel diverges by 3 in total, score = 3/765 ~ 0.0039
	img := uniformImage(10, 10, color.RGBA{R: 101, G: 100, B: 100, A: 255})

	t.Run("should be night vision below the default threshold", func(t *testing.T) {
		assert.True(t, newClassifier(0.005).NightVision(img))
	})

	t.Run("should not be night vision with a stricter threshold", func(t *testing.T) {
		assert.False(t, newClassifier(0.001).NightVision(img))
	})
}

func Test_NightVision_Deterministic(t *testing.T) {

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: uint8((x + y) * 4), A: 255})
		}
	}

	classifier := newClassifier(constants.DefaultNightVisionThreshold)
	score := classifier.Score(img)
	result := classifier.NightVision(img)

	for i := 0; i < 5; i++ {
		assert.Equal(t, score, classifier.Score(img))
		assert.Equal(t, result, classifier.NightVision(img))
	}
}

func Test_NightVision_BlackAndWhite(t *testing.T) {

	// no colour information at all, reported as night vision
	classifier := newClassifier(constants.DefaultNightVisionThreshold)

	assert.True(t, classifier.NightVision(uniformImage(8, 8, color.Black)))
	assert.True(t, classifier.NightVision(uniformImage(8, 8, color.White)))
}

func Test_Score_OffsetBounds(t *testing.T) {

	img := image.NewRGBA(image.Rect(10, 10, 12, 11))
	img.Set(10, 10, color.RGBA{R: 255, A: 255})
	img.Set(11, 10, color.RGBA{A: 255})

	// (510 + 0) / 2 pixels / 765
	assert.InDelta(t, 255.0/765.0, newClassifier(0.005).Score(img), 1e-9)
}
