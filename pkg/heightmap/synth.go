package heightmap

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
)

// Synthesize generates a grayscale fractal heightmap from summed simplex
// octaves. Each octave doubles the frequency and halves the amplitude; the
// result is normalised to the full 0..255 range.
func Synthesize(width, height int, seed int64, octaves int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	if octaves < 1 {
		octaves = 1
	}

	noises := make([]opensimplex.Noise, octaves)
	for i := range noises {
		noises[i] = opensimplex.New(seed + int64(i))
	}

	field := make([]float64, width*height)
	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			nx := float64(x) / float64(width)
			ny := float64(y) / float64(height)

			var v float64
			freq, amp := 4.0, 1.0
			for _, n := range noises {
				v += n.Eval2(nx*freq, ny*freq) * amp
				freq *= 2
				amp /= 2
			}
			field[y*width+x] = v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	span := hi - lo
	data := make([]byte, width*height*3)
	for i, v := range field {
		var g byte
		if span > 0 {
			g = byte(math.Round((v - lo) / span * 255))
		}
		data[i*3] = g
		data[i*3+1] = g
		data[i*3+2] = g
	}
	return New(width, height, 3, data)
}
