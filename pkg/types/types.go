package types

import "image"

// DetectedObject is a single detection reported by an object locator.
// BBox is in frame pixel coordinates: Min is (x1, y1), Max is (x2, y2).
type DetectedObject struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	BBox       image.Rectangle `json:"bbox"`
}

// Center returns the integer midpoint of the bounding box
func (o DetectedObject) Center() (int, int) {
	return (o.BBox.Min.X + o.BBox.Max.X) / 2, (o.BBox.Min.Y + o.BBox.Max.Y) / 2
}

// ScoreReport is the outcome of scoring one frame. All sub-scores are on a 1-10 scale.
type ScoreReport struct {
	FinalScore  float64  `json:"final_score"`
	Position    float64  `json:"position"`
	Angle       float64  `json:"angle"`
	Lighting    float64  `json:"lighting"`
	Focus       float64  `json:"focus"`
	Feedback    []string `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Box represents a normalized bounding box with coordinates in [0,1] range
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// VisionObject is one object as reported by a vision language model
type VisionObject struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// VisionResult is the parsed JSON reply of a vision model asked to list objects
type VisionResult struct {
	Objects     []VisionObject `json:"objects"`
	Description string         `json:"description"`
}
