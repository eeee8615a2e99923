package yolo

import (
	"image"
	"strconv"
)

type candidate struct {
	box   image.Rectangle
	score float32
	class int
}

// decode scans a channel-major YOLOv8 tensor (attrs rows of count anchors)
// and keeps anchors whose best class clears the confidence threshold. Boxes
// are scaled from network input size to a width x height frame.
func decode(data []float32, attrs, count int, cfg Config, width, height int) []candidate {
	if attrs <= 4 || len(data) < attrs*count {
		return nil
	}

	sx := float32(width) / float32(cfg.InputWidth)
	sy := float32(height) / float32(cfg.InputHeight)

	var out []candidate
	for i := 0; i < count; i++ {
		best := float32(0)
		class := 0
		for c := 4; c < attrs; c++ {
			if s := data[c*count+i]; s > best {
				best = s
				class = c - 4
			}
		}
		if best < cfg.ConfidenceThresh {
			continue
		}

		cx := data[0*count+i]
		cy := data[1*count+i]
		w := data[2*count+i]
		h := data[3*count+i]

		out = append(out, candidate{
			box: image.Rect(
				int((cx-w/2)*sx),
				int((cy-h/2)*sy),
				int((cx+w/2)*sx),
				int((cy+h/2)*sy),
			),
			score: best,
			class: class,
		})
	}
	return out
}

// ClassName maps a COCO class index to its label
func ClassName(id int) string {
	if id >= 0 && id < len(COCOClasses) {
		return COCOClasses[id]
	}
	return "class_" + strconv.Itoa(id)
}

// COCOClasses contains the 80 COCO class names
var COCOClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}
