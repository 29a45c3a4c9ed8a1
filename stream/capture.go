package stream

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/silvercord/recorder/telemetry"
)

// MediaResolver turns a watch URL into a direct, short-lived media URL.
type MediaResolver interface {
	DirectURL(ctx context.Context, watchURL string) (string, error)
}

// FrameExtractor writes exactly one frame from a direct media URL to the
// given path.
type FrameExtractor interface {
	Extract(ctx context.Context, directURL, outPath string) error
}

// ytDlpMedia resolves direct media URLs with `yt-dlp -g`.
type ytDlpMedia struct{ run Runner }

func (m ytDlpMedia) DirectURL(ctx context.Context, watchURL string) (string, error) {
	out, err := m.run.Output(ctx, "yt-dlp", "-g", "-f", "best", "--no-playlist", watchURL)
	if err != nil {
		return "", err
	}
	// -g may print one URL per requested format; the first is the merged best.
	url, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return url, nil
}

// ffmpegExtractor grabs a single frame with ffmpeg.
type ffmpegExtractor struct{ run Runner }

func (f ffmpegExtractor) Extract(ctx context.Context, directURL, outPath string) error {
	_, err := f.run.Output(ctx, "ffmpeg", "-y", "-i", directURL, "-vframes", "1", "-q:v", "2", outPath)
	return err
}

// Capture produces still frames from live streams, reusing a recent on-disk
// frame when one exists. The freshness window is an anti-hammering guard:
// within it, repeated requests are visually indistinguishable, so no process
// work is done.
type Capture struct {
	imgDir    string
	freshness time.Duration
	media     MediaResolver
	extractor FrameExtractor
	now       func() time.Time
}

// NewCapture builds a Capture using yt-dlp and ffmpeg. freshness <= 0 falls
// back to 15 seconds.
func NewCapture(imgDir string, freshness time.Duration) (*Capture, error) {
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return nil, err
	}
	if freshness <= 0 {
		freshness = 15 * time.Second
	}
	run := ExecRunner{}
	return &Capture{
		imgDir:    imgDir,
		freshness: freshness,
		media:     ytDlpMedia{run: run},
		extractor: ffmpegExtractor{run: run},
		now:       time.Now,
	}, nil
}

// Frame captures (or reuses) a still frame for videoURL and returns the full
// path to the image. The second return is false on any failure; causes are
// logged, never surfaced.
func (c *Capture) Frame(ctx context.Context, videoURL, filename string) (string, bool) {
	dest := filepath.Join(c.imgDir, filename)

	ctx, span := telemetry.StartSpan(ctx, "stream", "capture-frame")
	defer span.End()

	if fi, err := os.Stat(dest); err == nil {
		if c.now().Sub(fi.ModTime()) < c.freshness {
			telemetry.FramesReused.Inc()
			slog.Info("reusing fresh frame", slog.String("file", filename), slog.String("component", "capture"))
			return dest, true
		}
	}

	telemetry.CapturesStarted.Inc()
	start := c.now()

	direct, err := c.media.DirectURL(ctx, videoURL)
	if err != nil {
		telemetry.CapturesFailed.Inc()
		telemetry.RecordError(span, err)
		slog.Warn("direct url resolution failed", slog.Any("err", err), slog.String("class", Classify(err).String()), slog.String("component", "capture"))
		return "", false
	}

	// Extract into a temp file and rename so a concurrent reader never sees a
	// half-written image.
	tmp := tempPath(dest)
	if err := c.extractor.Extract(ctx, direct, tmp); err != nil {
		_ = os.Remove(tmp)
		telemetry.CapturesFailed.Inc()
		telemetry.RecordError(span, err)
		slog.Warn("frame extraction failed", slog.Any("err", err), slog.String("class", Classify(err).String()), slog.String("component", "capture"))
		return "", false
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		telemetry.CapturesFailed.Inc()
		slog.Warn("frame rename failed", slog.Any("err", err), slog.String("component", "capture"))
		return "", false
	}

	telemetry.CapturesSucceeded.Inc()
	if telemetry.CaptureDuration != nil {
		telemetry.CaptureDuration.Observe(c.now().Sub(start).Seconds())
	}
	slog.Info("frame captured", slog.String("file", dest), slog.String("component", "capture"))
	return dest, true
}

// tempPath inserts ".tmp" before the image extension. ffmpeg picks its output
// muxer from the extension, so the temp name must still end in one it knows.
func tempPath(dest string) string {
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + ".tmp" + ext
}

// FrameFilename derives the stable per-(game, side) image name.
func FrameFilename(game, side string) string {
	return "cctv_" + strings.ToLower(game) + "_" + strings.ToUpper(side) + ".jpg"
}
