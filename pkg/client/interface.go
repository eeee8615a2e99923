package client

import (
	"context"

	"github.com/menta2k/photo-coach/pkg/types"
)

// VisionClient is a chat backend that can look at an image
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	ListObjects(ctx context.Context, model, prompt, imgB64 string) (*types.VisionResult, error)
}
