package client

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/menta2k/photo-coach/pkg/types"
)

var (
	reBlockComment  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLineComment   = regexp.MustCompile(`(?m)^\s*//.*$`)
	reInlineComment = regexp.MustCompile(`(?m)//.*$`)
	reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)
)

// ParseVisionResult extracts an object list from a model reply. Replies that
// hold no usable JSON yield an empty result rather than an error, so a
// chatty model degrades to "no subject" instead of failing the frame.
func ParseVisionResult(raw string) *types.VisionResult {
	raw = SanitizeModelJSON(raw)

	if !strings.HasPrefix(raw, "{") {
		return &types.VisionResult{Objects: []types.VisionObject{}, Description: "Model returned non-JSON response"}
	}

	var result types.VisionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return &types.VisionResult{Objects: []types.VisionObject{}, Description: "Failed to parse model response"}
	}

	if result.Objects == nil {
		result.Objects = []types.VisionObject{}
	}
	return &result
}

// SanitizeModelJSON removes code fences, comments, and trailing commas from JSON response
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, "`")

	raw = reBlockComment.ReplaceAllString(raw, "")
	raw = reLineComment.ReplaceAllString(raw, "")
	raw = reInlineComment.ReplaceAllString(raw, "")
	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
