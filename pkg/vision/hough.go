package vision

import (
	"image"
	"math"
	"sort"
)

// Line is a straight line in normal form: x*cos(Theta) + y*sin(Theta) = Rho.
// Theta is in radians within [0, π).
type Line struct {
	Rho   float64
	Theta float64
	Votes int
}

// Degrees returns the line's normal angle in degrees
func (l Line) Degrees() float64 {
	return l.Theta * 180 / math.Pi
}

// HoughLines runs the standard Hough transform over an edge map (non-zero
// pixels are edges). rho is the distance resolution in pixels, theta the angle
// resolution in radians; only accumulator peaks with more than threshold votes
// are returned, strongest first.
func HoughLines(edges *image.Gray, rho, theta float64, threshold int) []Line {
	bounds := edges.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 || rho <= 0 || theta <= 0 {
		return nil
	}

	numAngle := int(math.RoundToEven(math.Pi / theta))
	if numAngle > 1 && math.Abs(math.Pi-float64(numAngle-1)*theta) < theta/2 {
		numAngle--
	}
	numRho := int(math.RoundToEven(float64((width+height)*2+1) / rho))

	sinTab := make([]float64, numAngle)
	cosTab := make([]float64, numAngle)
	for n := 0; n < numAngle; n++ {
		ang := float64(n) * theta
		sinTab[n] = math.Sin(ang) / rho
		cosTab[n] = math.Cos(ang) / rho
	}

	// accumulator is padded by one cell on every side
	stride := numRho + 2
	accum := make([]int, (numAngle+2)*stride)
	offset := (numRho - 1) / 2

	for y := 0; y < height; y++ {
		row := edges.Pix[y*edges.Stride : y*edges.Stride+width]
		for x, v := range row {
			if v == 0 {
				continue
			}
			for n := 0; n < numAngle; n++ {
				r := int(math.RoundToEven(float64(x)*cosTab[n]+float64(y)*sinTab[n])) + offset
				accum[(n+1)*stride+r+1]++
			}
		}
	}

	type peak struct {
		index int
		votes int
	}
	var peaks []peak
	for r := 0; r < numRho; r++ {
		for n := 0; n < numAngle; n++ {
			base := (n+1)*stride + r + 1
			v := accum[base]
			if v > threshold &&
				v > accum[base-1] && v >= accum[base+1] &&
				v > accum[base-stride] && v >= accum[base+stride] {
				peaks = append(peaks, peak{index: base, votes: v})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		if peaks[i].votes != peaks[j].votes {
			return peaks[i].votes > peaks[j].votes
		}
		return peaks[i].index < peaks[j].index
	})

	lines := make([]Line, 0, len(peaks))
	for _, p := range peaks {
		n := p.index/stride - 1
		r := p.index - (n+1)*stride - 1
		lines = append(lines, Line{
			Rho:   (float64(r) - float64(numRho-1)*0.5) * rho,
			Theta: float64(n) * theta,
			Votes: p.votes,
		})
	}

	return lines
}
