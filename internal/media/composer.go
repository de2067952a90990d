package media

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const (
	// LeadIn is the silence before narration starts.
	LeadIn = 0.2
	// TrailPad is the silence after narration ends.
	TrailPad = 0.8

	FrameWidth  = 1080
	FrameHeight = 1920
	FrameRate   = 30

	captionFontSize     = 72
	captionBottomOffset = 250
	captionBorderWidth  = 8

	softwareEncoder = "libx264"
	hardwareEncoder = "h264_amf"
)

// FinalDuration is the segment length for narration of length audio seconds.
// Video and audio are both conformed to it.
func FinalDuration(audio float64) float64 {
	return audio + LeadIn + TrailPad
}

// ComposeRequest describes one segment composition.
type ComposeRequest struct {
	VideoPath          string
	AudioPath          string
	OutputPath         string
	UseHardwareEncoder bool
	Caption            string
}

// ComposeResult reports the timing of a composed segment.
type ComposeResult struct {
	AudioDuration float64
	FinalDuration float64
}

// ComposerOptions configures a Composer.
type ComposerOptions struct {
	FFmpeg   string
	Probe    DurationProber
	Runner   Runner
	FontFile string
	Logger   *infra.Logger
}

// Composer muxes looped stock footage with narration into a captioned
// vertical segment.
type Composer struct {
	ffmpeg   string
	probe    DurationProber
	runner   Runner
	fontFile string
	logger   *infra.Logger
}

// NewComposer validates opts and returns a Composer.
func NewComposer(opts ComposerOptions) (*Composer, error) {
	if strings.TrimSpace(opts.FFmpeg) == "" {
		return nil, errors.New("media: ffmpeg path is required")
	}
	if opts.Probe == nil {
		return nil, errors.New("media: duration probe is required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Composer{
		ffmpeg:   opts.FFmpeg,
		probe:    opts.Probe,
		runner:   runner,
		fontFile: opts.FontFile,
		logger:   infra.OrNop(opts.Logger),
	}, nil
}

// Compose encodes req.OutputPath. On failure the output file, if any, must be
// treated as invalid.
func (c *Composer) Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	audio, err := c.probe.Duration(ctx, req.AudioPath)
	if err != nil {
		return ComposeResult{}, err
	}
	final := FinalDuration(audio)
	c.logger.Debug().
		Str("output", req.OutputPath).
		Float64("audio_seconds", audio).
		Float64("final_seconds", final).
		Msg("media: composing segment")

	if _, err := c.runner.Run(ctx, c.ffmpeg, c.composeArgs(req, final)...); err != nil {
		return ComposeResult{}, fmt.Errorf("%w: %s: %v", domain.ErrComposition, req.OutputPath, err)
	}
	return ComposeResult{AudioDuration: audio, FinalDuration: final}, nil
}

func (c *Composer) composeArgs(req ComposeRequest, final float64) []string {
	videoFilter, audioFilter := BuildFilterGraph(final, req.Caption, c.fontFile)
	codec := softwareEncoder
	if req.UseHardwareEncoder {
		codec = hardwareEncoder
	}
	return []string{
		"-hide_banner",
		"-stream_loop", "-1",
		"-i", req.VideoPath,
		"-i", req.AudioPath,
		"-filter_complex", videoFilter + ";" + audioFilter,
		"-map", "[v]",
		"-map", "[a]",
		"-t", strconv.FormatFloat(final, 'f', 3, 64),
		"-shortest",
		"-r", strconv.Itoa(FrameRate),
		"-c:v", codec,
		"-preset", "fast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		"-ac", "2",
		"-pix_fmt", "yuv420p",
		"-y",
		req.OutputPath,
	}
}

// BuildFilterGraph returns the video and audio filter chains for a segment of
// final seconds. The video is scaled to cover the vertical frame and
// center-cropped; the audio is delayed by LeadIn and padded to final.
func BuildFilterGraph(final float64, caption, fontFile string) (video, audio string) {
	video = fmt.Sprintf("[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setpts=PTS-STARTPTS",
		FrameWidth, FrameHeight, FrameWidth, FrameHeight)
	if lines := WrapCaption(SanitizeCaption(caption), CaptionLineLimit); len(lines) > 0 {
		video += "," + drawtextFilter(strings.Join(lines, "\n"), fontFile)
	}
	video += "[v]"

	delayMs := int(LeadIn * 1000)
	audio = fmt.Sprintf("[1:a]asetpts=PTS-STARTPTS,adelay=%d|%d,apad=whole_dur=%.2f[a]", delayMs, delayMs, final)
	return video, audio
}

func drawtextFilter(text, fontFile string) string {
	var sb strings.Builder
	sb.WriteString("drawtext=")
	if fontFile != "" {
		fmt.Fprintf(&sb, "fontfile='%s':", escapeFilterPath(fontFile))
	}
	fmt.Fprintf(&sb, "text='%s':fontcolor=white:fontsize=%d:x=(w-text_w)/2:y=h-text_h-%d:borderw=%d:bordercolor=black",
		escapeDrawtext(text), captionFontSize, captionBottomOffset, captionBorderWidth)
	return sb.String()
}
