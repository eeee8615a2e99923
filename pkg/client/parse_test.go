package client

import "testing"

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "plain",
			input:  `{"objects":[]}`,
			expect: `{"objects":[]}`,
		},
		{
			name:   "fenced",
			input:  "```json\n{\"objects\":[]}\n```",
			expect: `{"objects":[]}`,
		},
		{
			name:   "trailing comma",
			input:  `{"objects":[{"label":"cat",},],}`,
			expect: `{"objects":[{"label":"cat"}]}`,
		},
		{
			name:   "chatter around json",
			input:  `Sure! Here you go: {"description":"a cat"} Hope this helps.`,
			expect: `{"description":"a cat"}`,
		},
		{
			name:   "block comment",
			input:  `{/* note */"description":"x"}`,
			expect: `{"description":"x"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeModelJSON(tc.input); got != tc.expect {
				t.Errorf("Expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestParseVisionResult(t *testing.T) {
	raw := "```json\n" + `{
  "objects": [
    {"label": "person", "confidence": 0.92, "box": {"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.6}},
    {"label": "dog", "confidence": 0.55, "box": {"x": 0.6, "y": 0.5, "w": 0.2, "h": 0.3}},
  ],
  "description": "a person walking a dog"
}` + "\n```"

	result := ParseVisionResult(raw)
	if len(result.Objects) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(result.Objects))
	}
	if result.Objects[0].Label != "person" || result.Objects[0].Confidence != 0.92 {
		t.Errorf("Unexpected first object: %+v", result.Objects[0])
	}
	if result.Objects[1].Box.W != 0.2 {
		t.Errorf("Expected box width 0.2, got %v", result.Objects[1].Box.W)
	}
	if result.Description != "a person walking a dog" {
		t.Errorf("Unexpected description: %q", result.Description)
	}
}

func TestParseVisionResultFallback(t *testing.T) {
	inputs := []string{
		"I cannot see anything useful in this picture.",
		`{"objects": [ {"label": }`,
		"",
	}

	for _, in := range inputs {
		result := ParseVisionResult(in)
		if result == nil {
			t.Fatalf("Expected fallback result for %q, got nil", in)
		}
		if result.Objects == nil || len(result.Objects) != 0 {
			t.Errorf("Expected empty object list for %q, got %#v", in, result.Objects)
		}
	}
}
