// Package vision provides the image statistics the photo scorer is built on:
// luma conversion, brightness, Laplacian sharpness, Canny edges and the
// standard Hough line transform.
//
// All functions are read-only with respect to their inputs and safe to call
// concurrently.
package vision

import (
	"image"

	"github.com/disintegration/imaging"
)

// Grayscale converts a frame to 8-bit luma using BT.601 weights
// (0.299 R + 0.587 G + 0.114 B, rounded). The result always starts at (0,0).
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}

	nrgba := imaging.Grayscale(img)
	bounds := nrgba.Bounds()
	gray := image.NewGray(bounds)

	for y := 0; y < bounds.Dy(); y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := gray.Pix[y*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			dst[x] = src[x*4]
		}
	}

	return gray
}

// MeanBrightness returns the average luma (0-255) of a grayscale image
func MeanBrightness(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return 0
	}

	var sum uint64
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for _, v := range row {
			sum += uint64(v)
		}
	}

	return float64(sum) / float64(width*height)
}

// reflect101 maps an out-of-range index back into [0,n) mirroring around the
// edge pixels without repeating them (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// replicate clamps an index into [0,n) (aaaaaa|abcdefgh|hhhhhhh).
func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
