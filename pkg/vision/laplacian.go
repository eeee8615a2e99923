package vision

import "image"

// Laplacian applies the 4-neighbour Laplacian kernel
//
//	0  1  0
//	1 -4  1
//	0  1  0
//
// with a reflect-101 border and returns the responses row by row.
func Laplacian(gray *image.Gray) []float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([]float64, width*height)

	at := func(x, y int) float64 {
		return float64(gray.Pix[reflect101(y, height)*gray.Stride+reflect101(x, width)])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = at(x, y-1) + at(x-1, y) + at(x+1, y) + at(x, y+1) - 4*at(x, y)
		}
	}

	return out
}

// LaplacianVariance returns the population variance of the Laplacian
// response. Low values mean little edge energy, i.e. a blurry frame.
func LaplacianVariance(gray *image.Gray) float64 {
	values := Laplacian(gray)
	if len(values) == 0 {
		return 0
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}

	return variance / float64(len(values))
}
