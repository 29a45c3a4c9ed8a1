package stream

import "strings"

// ErrorClass partitions external process failures for logging. Every class is
// downgraded to an absent result at the pipeline boundary; classification only
// drives log wording and lets operators tell "channel offline" apart from
// "network broken".
type ErrorClass int

const (
	// ClassOffline means the content genuinely is not there: no live
	// broadcast, deleted video, members-only stream.
	ClassOffline ErrorClass = iota
	// ClassTransient covers network and upstream-server failures that would
	// likely succeed on a later attempt.
	ClassTransient
	// ClassUnknown is everything else.
	ClassUnknown
)

func (ec ErrorClass) String() string {
	switch ec {
	case ClassOffline:
		return "offline"
	case ClassTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Classify inspects an external tool error (yt-dlp, ffmpeg, API client) and
// assigns a class based on well-known message fragments.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}
	lower := strings.ToLower(err.Error())

	// Upstream server trouble reads as transient even when it carries a
	// not-found-looking body.
	for _, p := range []string{"500", "502", "503", "504", "internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, p) {
			return ClassTransient
		}
	}

	for _, p := range []string{"not currently live", "is offline", "no video formats found", "video unavailable", "not found", "404", "does not exist", "members-only", "private video", "unable to extract"} {
		if strings.Contains(lower, p) {
			return ClassOffline
		}
	}

	for _, p := range []string{"connection reset", "connection refused", "timeout", "timed out", "temporary failure in name resolution", "no route to host", "network unreachable", "dns", "eof", "broken pipe", "429", "too many requests", "rate limit"} {
		if strings.Contains(lower, p) {
			return ClassTransient
		}
	}

	return ClassUnknown
}
