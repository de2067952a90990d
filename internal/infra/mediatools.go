package infra

import (
	"fmt"
	"os/exec"
)

// MediaTools are the absolute paths of the encoder binaries, resolved once at
// startup and handed to the media package constructors.
type MediaTools struct {
	FFmpeg  string
	FFprobe string
}

// ResolveMediaTools looks up ffmpeg and ffprobe and fails if either is missing.
func ResolveMediaTools(cfg MediaConfig) (MediaTools, error) {
	ffmpeg, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return MediaTools{}, fmt.Errorf("ffmpeg not available at %q: %w", cfg.FFmpegPath, err)
	}
	ffprobe, err := exec.LookPath(cfg.FFprobePath)
	if err != nil {
		return MediaTools{}, fmt.Errorf("ffprobe not available at %q: %w", cfg.FFprobePath, err)
	}
	return MediaTools{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}
