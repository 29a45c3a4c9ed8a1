package stream

import (
	"context"
	"errors"
	"testing"
)

type cannedRunner struct {
	out  []byte
	err  error
	args []string
}

func (c *cannedRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	c.args = append([]string{name}, args...)
	return c.out, c.err
}

func TestYtDlpListerParsesLines(t *testing.T) {
	run := &cannedRunner{out: []byte("abc123::::SDVX Valkyrie [SILVERCORD - L]\ndef456::::SDVX Valkyrie [SILVERCORD - R]\ngarbage line\n")}
	l := &YtDlpLister{ChannelURL: "https://www.youtube.com/@x/streams", Run: run}

	got, err := l.ListLive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(got))
	}
	if got[0].ID != "abc123" || got[0].Title != "SDVX Valkyrie [SILVERCORD - L]" {
		t.Fatalf("unexpected first entry %+v", got[0])
	}
	if got[1].ID != "def456" {
		t.Fatalf("unexpected second entry %+v", got[1])
	}
}

func TestYtDlpListerTitleWithColons(t *testing.T) {
	run := &cannedRunner{out: []byte("id1::::Live: round 2 :: finals [SILVERCORD - L]\n")}
	l := &YtDlpLister{ChannelURL: "u", Run: run}

	got, err := l.ListLive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Title != "Live: round 2 :: finals [SILVERCORD - L]" {
		t.Fatalf("title with colons mangled: %q", got[0].Title)
	}
}

func TestYtDlpListerEmptyOutput(t *testing.T) {
	run := &cannedRunner{out: []byte("\n")}
	l := &YtDlpLister{ChannelURL: "u", Run: run}

	got, err := l.ListLive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no broadcasts, got %d", len(got))
	}
}

func TestYtDlpListerError(t *testing.T) {
	run := &cannedRunner{err: errors.New("yt-dlp: exit status 1")}
	l := &YtDlpLister{ChannelURL: "u", Run: run}

	if _, err := l.ListLive(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
