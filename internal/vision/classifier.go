package vision

import (
	"image"

	"github.com/charmbracelet/log"
)

// Classifier decides whether a camera has switched to night vision (IR,
// monochrome) by how far the colour channels of its pixels diverge.
//
// Fully black or fully white frames have no divergence either and are
// therefore reported as night vision too.
type Classifier struct {
	logger    *log.Logger
	threshold float64
}

func NewClassifier(logger *log.Logger, threshold float64) *Classifier {
	return &Classifier{logger: logger, threshold: threshold}
}

func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Score returns the mean per-pixel sum of |R-G|+|R-B|+|G-B|, normalised to [0,1].
func (c *Classifier) Score(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var diff uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r32, g32, b32, _ := img.At(x, y).RGBA()
			r, g, b := int(r32>>8), int(g32>>8), int(b32>>8)

			diff += uint64(abs(r-g) + abs(r-b) + abs(g-b))
		}
	}

	return float64(diff) / float64(pixels) / (255.0 * 3.0)
}

func (c *Classifier) NightVision(img image.Image) bool {
	score := c.Score(img)
	nightVision := score <= c.threshold

	c.logger.Debug("Classified camera image", "score", score, "night_vision", nightVision)

	return nightVision
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
