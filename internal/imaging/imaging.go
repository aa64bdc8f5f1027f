// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging extracts still frames from uploaded videos with ffmpeg.
// They become the thumbnail of subcategories and articles that opt in and
// have no image of their own.
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"
)

// ThumbnailOffset is the video position the thumbnail frame is taken from.
const ThumbnailOffset = time.Second

// ErrNoFrame is returned when the video is shorter than the offset or has
// no decodable video stream.
var ErrNoFrame = errors.New("imaging: no frame at offset")

// FFmpeg grabs frames by running the ffmpeg binary.
type FFmpeg struct {
	// Binary is the ffmpeg executable; "ffmpeg" from PATH when empty.
	Binary string
	// Timeout bounds a single extraction; 30s when zero.
	Timeout time.Duration
}

// Available reports whether the ffmpeg binary can be found.
func (f FFmpeg) Available() bool {
	_, err := exec.LookPath(f.binary())
	return err == nil
}

func (f FFmpeg) binary() string {
	if f.Binary != "" {
		return f.Binary
	}
	return "ffmpeg"
}

// Args returns the ffmpeg arguments that write one JPEG frame of input,
// taken at offset, to standard output.
func Args(input string, offset time.Duration) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(offset.Seconds(), 'f', 3, 64),
		"-i", input,
		"-frames:v", "1",
		"-f", "image2", "-c:v", "mjpeg",
		"pipe:1",
	}
}

// Frame returns the JPEG-encoded frame of the video file at path taken at
// offset.
func (f FFmpeg) Frame(ctx context.Context, path string, offset time.Duration) ([]byte, error) {
	timeout := f.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.binary(), Args(path, offset)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if stdout.Len() == 0 {
		return nil, ErrNoFrame
	}
	return stdout.Bytes(), nil
}
