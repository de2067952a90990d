package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

// Concatenator joins composed segments with a stream copy.
type Concatenator struct {
	ffmpeg string
	runner Runner
	logger *infra.Logger
}

// NewConcatenator builds a Concatenator for the ffmpeg binary at bin.
func NewConcatenator(bin string, runner Runner, logger *infra.Logger) (*Concatenator, error) {
	if strings.TrimSpace(bin) == "" {
		return nil, errors.New("media: ffmpeg path is required")
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Concatenator{ffmpeg: bin, runner: runner, logger: infra.OrNop(logger)}, nil
}

// Concat writes segments, in order, to output without re-encoding. The
// manifest written next to output is always removed.
func (c *Concatenator) Concat(ctx context.Context, segments []string, output string) error {
	if len(segments) == 0 {
		return fmt.Errorf("%w: no segments", domain.ErrConcatenation)
	}
	manifest := strings.TrimSuffix(output, filepath.Ext(output)) + "_concat.txt"
	if err := os.WriteFile(manifest, []byte(BuildManifest(segments)), 0o644); err != nil {
		return fmt.Errorf("%w: write manifest: %v", domain.ErrConcatenation, err)
	}
	defer func() {
		if err := os.Remove(manifest); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn().Err(err).Str("manifest", manifest).Msg("media: manifest cleanup failed")
		}
	}()

	_, err := c.runner.Run(ctx, c.ffmpeg,
		"-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		"-y",
		output,
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrConcatenation, output, err)
	}
	c.logger.Debug().Int("segments", len(segments)).Str("output", output).Msg("media: segments concatenated")
	return nil
}

// BuildManifest renders the concat demuxer list for segments.
func BuildManifest(segments []string) string {
	var sb strings.Builder
	for _, p := range segments {
		p = strings.ReplaceAll(filepath.ToSlash(p), "'", `'\''`)
		fmt.Fprintf(&sb, "file '%s'\n", p)
	}
	return sb.String()
}
