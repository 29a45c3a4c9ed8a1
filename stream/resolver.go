// Package stream implements the live-stream lookup and frame capture pipeline:
// resolve a (game, side) pair to a currently-live broadcast of the configured
// channel, then pull a single still frame from it. Both stages cache: resolved
// links in a persistent JSON store with a TTL, captured frames on disk behind
// a short freshness window.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/silvercord/recorder/cache"
	"github.com/silvercord/recorder/telemetry"
)

// LiveBroadcast is one currently-live entry of the channel listing.
type LiveBroadcast struct {
	ID    string
	Title string
}

// Lister queries the channel for currently-live broadcasts. Order matters:
// the resolver picks the first title containing the target tag.
type Lister interface {
	ListLive(ctx context.Context) ([]LiveBroadcast, error)
}

// Info is a resolved stream: a playable watch URL plus the broadcast title.
type Info struct {
	URL   string
	Title string
}

// Resolver answers (game, side) lookups, consulting the link cache before the
// lister. All lister failures are swallowed: callers see "offline", never an
// error.
type Resolver struct {
	cache  *cache.Store
	lister Lister
	ttl    time.Duration
	now    func() time.Time
}

// NewResolver wires a resolver. ttl <= 0 falls back to one hour.
func NewResolver(store *cache.Store, lister Lister, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Resolver{cache: store, lister: lister, ttl: ttl, now: time.Now}
}

// StreamInfo resolves (game, side) to a playable URL and title. The second
// return is false when no matching live broadcast exists or the lookup failed.
func (r *Resolver) StreamInfo(ctx context.Context, game, side string) (Info, bool) {
	game = strings.ToLower(game)
	side = strings.ToUpper(side)

	ctx, span := telemetry.StartSpan(ctx, "stream", "resolve",
		attribute.String("game", game), attribute.String("side", side))
	defer span.End()

	if e, ok := r.cache.Get(game, side); ok && !e.Expired(r.now(), r.ttl) {
		telemetry.StreamCacheHits.Inc()
		slog.Info("stream link served from cache", slog.String("game", game), slog.String("side", side), slog.String("component", "resolver"))
		return Info{URL: e.URL, Title: e.Title}, true
	}
	telemetry.StreamCacheMisses.Inc()

	tag := targetTag(game, side)
	slog.Info("scanning live listing", slog.String("tag", tag), slog.String("component", "resolver"))

	telemetry.LiveLookups.Inc()
	broadcasts, err := r.lister.ListLive(ctx)
	if err != nil {
		telemetry.LiveLookupsFailed.Inc()
		telemetry.RecordError(span, err)
		slog.Warn("live listing failed, treating as offline", slog.Any("err", err), slog.String("class", Classify(err).String()), slog.String("component", "resolver"))
		return Info{}, false
	}

	for _, b := range broadcasts {
		if strings.Contains(b.Title, tag) {
			info := Info{URL: watchURL(b.ID), Title: b.Title}
			r.cache.Put(game, side, cache.Entry{URL: info.URL, Title: info.Title, Timestamp: r.now().Unix()})
			return info, true
		}
	}
	return Info{}, false
}

// targetTag derives the title tag scanned for in live broadcast titles.
// sdvx streams are tagged with the cabinet side, everything else with the game.
func targetTag(game, side string) string {
	if game == "sdvx" {
		return fmt.Sprintf("[SILVERCORD - %s]", side)
	}
	return fmt.Sprintf("[SILVERCORD - %s]", strings.ToUpper(game))
}

func watchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
