// Package stream reads JPEG frames from MJPEG byte streams such as the
// output of ffmpeg's image2pipe muxer.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"
)

const megabyte = 1024 * 1024

var (
	JpegSOI = []byte{0xFF, 0xD8} // Start of Image
	JpegEOI = []byte{0xFF, 0xD9} // End of Image
)

// Frame is one encoded JPEG taken from a stream
type Frame struct {
	Index int // 1-based position in the stream
	Data  []byte
}

// Options controls frame sampling
type Options struct {
	// Nth keeps every nth frame, values below 1 keep all of them
	Nth int
	// OnRead is called for every frame read, sampled or not
	OnRead func()
}

// Stats summarises a finished stream
type Stats struct {
	Read    int
	Sampled int
}

// SplitJPEG is a bufio.SplitFunc that yields complete JPEG images delimited
// by SOI and EOI markers, skipping any bytes between them.
func SplitJPEG(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := bytes.Index(data, JpegSOI)
	if start == -1 {
		if atEOF {
			return len(data), nil, nil
		}
		// keep a trailing 0xFF that may start the next marker
		if n := len(data) - 1; n > 0 {
			return n, nil, nil
		}
		return 0, nil, nil
	}
	end := bytes.Index(data[start+len(JpegSOI):], JpegEOI)
	if end == -1 {
		if atEOF {
			return len(data), nil, nil
		}
		return 0, nil, nil
	}
	stop := start + len(JpegSOI) + end + len(JpegEOI)
	return stop, data[start:stop], nil
}

// Each calls fn with every sampled frame until the stream ends, ctx is
// cancelled or fn returns an error. Frame data is a private copy.
func Each(ctx context.Context, r io.Reader, opts Options, fn func(Frame) error) (Stats, error) {
	nth := opts.Nth
	if nth < 1 {
		nth = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, megabyte), 64*megabyte)
	scanner.Split(SplitJPEG)

	var stats Stats
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Read++
		if opts.OnRead != nil {
			opts.OnRead()
		}
		if stats.Read%nth != 0 {
			continue
		}

		data := make([]byte, len(scanner.Bytes()))
		copy(data, scanner.Bytes())
		stats.Sampled++
		if err := fn(Frame{Index: stats.Read, Data: data}); err != nil {
			return stats, err
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("frame scanner failed: %w", err)
	}
	// a killed producer looks like a clean end of stream
	return stats, ctx.Err()
}

// ffmpegArgs makes ffmpeg write input as MJPEG frames to stdout.
// fps > 0 resamples the input to that rate.
func ffmpegArgs(input string, fps float64) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", input}
	if fps > 0 {
		args = append(args, "-vf", "fps="+strconv.FormatFloat(fps, 'f', -1, 64))
	}
	return append(args, "-f", "image2pipe", "-vcodec", "mjpeg", "-")
}

// Decoder is a running process whose stdout carries MJPEG frames
type Decoder struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	out    io.ReadCloser
	stderr bytes.Buffer
}

// StartFFmpeg starts ffmpeg decoding input to MJPEG frames
func StartFFmpeg(ctx context.Context, input string, fps float64) (*Decoder, error) {
	return StartDecoder(ctx, "ffmpeg", ffmpegArgs(input, fps)...)
}

// StartDecoder starts name with args under a child of ctx. The caller must
// finish it with Wait once the output is drained, or with Stop otherwise.
func StartDecoder(ctx context.Context, name string, args ...string) (*Decoder, error) {
	ctx, cancel := context.WithCancel(ctx)
	d := &Decoder{cmd: exec.CommandContext(ctx, name, args...), cancel: cancel}
	d.cmd.Stderr = &d.stderr
	d.cmd.WaitDelay = 2 * time.Second

	out, err := d.cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create %s stdout pipe: %w", name, err)
	}
	if err := d.cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	d.out = out
	return d, nil
}

// Output returns the decoder's stdout
func (d *Decoder) Output() io.Reader {
	return d.out
}

// Wait waits for the decoder to exit on its own. A failure carries the
// process's stderr.
func (d *Decoder) Wait() error {
	defer d.cancel()
	if err := d.cmd.Wait(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", d.cmd.Path, err, bytes.TrimSpace(d.stderr.Bytes()))
	}
	return nil
}

// Stop kills the decoder and waits for it to exit. Use it when the output is
// abandoned early; a process blocked writing to a full pipe would otherwise
// never exit. Being killed is not reported as an error.
func (d *Decoder) Stop() error {
	d.cancel()
	err := d.cmd.Wait()
	var exitErr *exec.ExitError
	if err == nil || errors.Is(err, context.Canceled) || (errors.As(err, &exitErr) && !exitErr.Exited()) {
		return nil
	}
	return fmt.Errorf("%s failed: %w: %s", d.cmd.Path, err, bytes.TrimSpace(d.stderr.Bytes()))
}

// ProbeFrameCount asks ffprobe for the number of video frames in path.
// It returns 0 when the count is unavailable.
func ProbeFrameCount(ctx context.Context, path string) int {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0
	}

	out, err := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=nb_frames", "-of", "json", path).Output()
	if err != nil {
		return 0
	}
	return parseFrameCount(out)
}

func parseFrameCount(out []byte) int {
	var res struct {
		Streams []struct {
			NbFrames string `json:"nb_frames"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &res); err != nil || len(res.Streams) == 0 {
		return 0
	}
	n, err := strconv.Atoi(res.Streams[0].NbFrames)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
