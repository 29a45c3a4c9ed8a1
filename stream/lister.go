package stream

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its stdout. It is the seam
// that lets tests substitute canned output for yt-dlp and ffmpeg.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// ytDlpSeparator splits the id and title in yt-dlp --print output. Four colons
// because titles routinely contain single or double ones.
const ytDlpSeparator = "::::"

// YtDlpLister lists live broadcasts by scanning the channel's streams page
// with yt-dlp in flat-playlist mode.
type YtDlpLister struct {
	ChannelURL string
	Run        Runner
}

func NewYtDlpLister(channelURL string) *YtDlpLister {
	return &YtDlpLister{ChannelURL: channelURL, Run: ExecRunner{}}
}

func (l *YtDlpLister) ListLive(ctx context.Context) ([]LiveBroadcast, error) {
	out, err := l.Run.Output(ctx, "yt-dlp",
		"--flat-playlist",
		"--match-filter", "is_live",
		"--print", "%(id)s"+ytDlpSeparator+"%(title)s",
		l.ChannelURL,
	)
	if err != nil {
		return nil, err
	}
	var broadcasts []LiveBroadcast
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		id, title, ok := strings.Cut(line, ytDlpSeparator)
		if !ok {
			continue
		}
		broadcasts = append(broadcasts, LiveBroadcast{ID: id, Title: title})
	}
	return broadcasts, nil
}
