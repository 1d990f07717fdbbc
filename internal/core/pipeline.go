package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tunelink/internal/store"
	"tunelink/pkg/fuzzy"
	"tunelink/pkg/linkparse"
	"tunelink/pkg/text"
)

// Resolver is the link resolution surface the pipeline depends on.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*linkparse.Result, error)
	CanResolve(url string) bool
}

// Recorder receives pipeline metrics. The HTTP server implements it; tests
// and one-shot CLI runs use NopRecorder.
type Recorder interface {
	RecordResolve(platform, status string)
	RecordResolveDuration(platform string, duration time.Duration)
	RecordDuplicate()
	RecordError(component, errType string)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) RecordResolve(string, string)                {}
func (NopRecorder) RecordResolveDuration(string, time.Duration) {}
func (NopRecorder) RecordDuplicate()                            {}
func (NopRecorder) RecordError(string, string)                  {}

// Pipeline glues message parsing, link resolution, deduplication and history
// into the per-message flow: extract URLs, resolve each resolvable one, drop
// songs the bot already delivered, persist the rest.
type Pipeline struct {
	resolver   Resolver
	textParser *text.Parser
	normalizer *fuzzy.Normalizer
	dedup      *store.DedupStore
	history    *store.HistoryStore
	recorder   Recorder
	logger     *zap.Logger
}

// NewPipeline creates a message pipeline. history may be nil (no persistence);
// recorder may be nil (no metrics).
func NewPipeline(resolver Resolver, dedup *store.DedupStore, history *store.HistoryStore, recorder Recorder, logger *zap.Logger) *Pipeline {
	if recorder == nil {
		recorder = NopRecorder{}
	}

	return &Pipeline{
		resolver:   resolver,
		textParser: text.NewParser(resolver.CanResolve),
		normalizer: fuzzy.NewNormalizer(),
		dedup:      dedup,
		history:    history,
		recorder:   recorder,
		logger:     logger,
	}
}

// SeedDedup loads recent history keys into the dedup store. Called once at
// startup; a missing history store is a no-op.
func (p *Pipeline) SeedDedup(ctx context.Context) error {
	if p.history == nil {
		return nil
	}

	keys, err := p.history.RecentKeys(ctx, p.dedup.Size()+10000)
	if err != nil {
		return err
	}

	p.dedup.Load(keys)
	p.logger.Info("seeded dedup store from history", zap.Int("keys", len(keys)))
	return nil
}

// DedupSize exposes the dedup store size for the metrics gauge.
func (p *Pipeline) DedupSize() int {
	return p.dedup.Size()
}

// HandleMessage processes one chat message and returns the results to deliver.
// Per-URL failures are logged and counted but never abort the batch.
func (p *Pipeline) HandleMessage(ctx context.Context, messageText string) []*linkparse.Result {
	msg := p.textParser.ParseMessage(messageText)
	if msg.Type != text.MessageTypeResolvableLink {
		return nil
	}

	var results []*linkparse.Result
	for _, url := range msg.URLs {
		if !p.resolver.CanResolve(url) {
			continue
		}

		result, ok := p.handleURL(ctx, url)
		if ok {
			results = append(results, result)
		}
	}

	return results
}

func (p *Pipeline) handleURL(ctx context.Context, url string) (*linkparse.Result, bool) {
	start := time.Now()
	result, err := p.resolver.Resolve(ctx, url)
	if err != nil {
		p.recordFailure(url, err)
		return nil, false
	}

	platform := result.Platform.Name
	p.recorder.RecordResolveDuration(platform, time.Since(start))

	key := p.dedupKey(result)
	if p.dedup.Has(key) {
		p.logger.Debug("skipping already delivered song",
			zap.String("url", url),
			zap.String("key", key))
		p.recorder.RecordDuplicate()
		return nil, false
	}

	if p.history != nil {
		entry := store.HistoryEntry{
			Platform:  platform,
			SourceURL: url,
			Title:     result.Title,
			DedupKey:  key,
			AudioURL:  audioURL(result),
		}
		if result.Author != nil {
			entry.Artist = result.Author.Name
		}
		if err := p.history.Record(ctx, entry); err != nil {
			// History is best effort; the result is still delivered.
			p.logger.Warn("failed to record history", zap.Error(err))
			p.recorder.RecordError("history", "record")
		}
	}

	p.dedup.Add(key)
	p.recorder.RecordResolve(platform, "success")

	p.logger.Info("resolved music link",
		zap.String("platform", platform),
		zap.String("url", url),
		zap.String("title", result.Title))

	return result, true
}

func (p *Pipeline) recordFailure(url string, err error) {
	p.logger.Warn("failed to resolve music link",
		zap.String("url", url),
		zap.Error(err))

	switch {
	case isRequestError(err):
		p.recorder.RecordResolve("unknown", "request_error")
		p.recorder.RecordError("resolver", "request")
	default:
		p.recorder.RecordResolve("unknown", "parse_error")
		p.recorder.RecordError("resolver", "parse")
	}
}

func isRequestError(err error) bool {
	_, ok := linkparse.AsRequestError(err)
	return ok
}

// dedupKey prefers the normalized artist|title pair. Passthrough results
// carry a fixed generic title and no author, so they fall back to the source
// URL to avoid colliding with each other.
func (p *Pipeline) dedupKey(result *linkparse.Result) string {
	if result.Author == nil || result.Author.Name == "" {
		return result.URL
	}

	return p.normalizer.Key(result.Author.Name, result.Title)
}

func audioURL(result *linkparse.Result) string {
	for _, item := range result.Contents {
		if item.Type == linkparse.ContentTypeAudio {
			return item.URL
		}
	}
	return ""
}
