// Package locator defines how objects are found in a frame and how the main
// subject is chosen among them.
package locator

import (
	"context"
	"image"

	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/pkg/types"
)

// Locator finds objects in a frame. Implementations must return an empty
// slice (not an error) for frames without any recognisable object.
type Locator interface {
	Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error)
}

// Func adapts a plain function to the Locator interface
type Func func(ctx context.Context, frame image.Image) ([]types.DetectedObject, error)

// Locate calls f
func (f Func) Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
	return f(ctx, frame)
}

// Static always reports the same objects regardless of the frame
type Static []types.DetectedObject

// Locate returns a copy of the static object list
func (s Static) Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
	out := make([]types.DetectedObject, len(s))
	copy(out, s)
	return out, nil
}

// None never finds anything
var None Locator = Static(nil)

// MainObject returns the detection with the highest confidence.
// Ties keep the earliest element, so the choice is stable for a given order.
func MainObject(objects []types.DetectedObject) (types.DetectedObject, bool) {
	if len(objects) == 0 {
		return types.DetectedObject{}, false
	}

	best := 0
	for i := 1; i < len(objects); i++ {
		if objects[i].Confidence > objects[best].Confidence {
			best = i
		}
	}

	return objects[best], true
}

// FailSoft wraps a locator so that backend failures surface as "no objects".
// onError, if set, is called with every swallowed error.
func FailSoft(next Locator, onError func(error)) Locator {
	return &failSoft{next: next, onError: onError}
}

type failSoft struct {
	next    Locator
	onError func(error)
}

func (f *failSoft) Locate(ctx context.Context, frame image.Image) ([]types.DetectedObject, error) {
	objects, err := f.next.Locate(ctx, frame)
	if err != nil {
		log.Warn("object locator failed, scoring without subject", "error", err)
		if f.onError != nil {
			f.onError(err)
		}
		return []types.DetectedObject{}, nil
	}
	if objects == nil {
		objects = []types.DetectedObject{}
	}
	return objects, nil
}
