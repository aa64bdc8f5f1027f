package imaging

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestArgs(t *testing.T) {
	got := Args("/tmp/clip.mp4", ThumbnailOffset)
	want := []string{
		"-hide_banner", "-loglevel", "error",
		"-ss", "1.000",
		"-i", "/tmp/clip.mp4",
		"-frames:v", "1",
		"-f", "image2", "-c:v", "mjpeg",
		"pipe:1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestFrame_MissingBinary(t *testing.T) {
	f := FFmpeg{Binary: "ffmpeg-not-installed-here", Timeout: time.Second}
	if f.Available() {
		t.Skip("unexpected binary on PATH")
	}
	if _, err := f.Frame(context.Background(), "/tmp/none.mp4", ThumbnailOffset); err == nil {
		t.Error("Frame with missing binary should fail")
	}
}
