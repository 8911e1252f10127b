package signals

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/enrichment"
	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// DefaultProductHuntFeedURL is the public launches feed.
const DefaultProductHuntFeedURL = "https://www.producthunt.com/feed"

// ProductHuntAdapter filters the public launches feed by keyword.
type ProductHuntAdapter struct {
	base
	parser *gofeed.Parser
}

// NewProductHuntAdapter creates the Product Hunt adapter.
func NewProductHuntAdapter(opts AdapterOptions, logger *zap.Logger) *ProductHuntAdapter {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultProductHuntFeedURL
	}
	return &ProductHuntAdapter{
		base:   newBase(models.PlatformProductHunt, opts, logger),
		parser: gofeed.NewParser(),
	}
}

// Fetch keeps feed entries whose title or description mentions the keyword.
// Entries carry no engagement counts, so strength sits at the formula floor.
func (a *ProductHuntAdapter) Fetch(ctx context.Context, keyword string) Result {
	keyword = cleanKeyword(keyword)
	if r, ok := a.shortCircuit(keyword); ok {
		return r
	}

	body, err := a.fetch.get(ctx, a.opts.BaseURL)
	if err != nil {
		return a.fallback(keyword, err)
	}
	feed, err := a.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return a.fallback(keyword, fmt.Errorf("failed to parse feed: %w", err))
	}

	needle := strings.ToLower(keyword)
	signals := []models.CommunitySignal{}
	for _, item := range feed.Items {
		if !strings.Contains(strings.ToLower(item.Title), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			continue
		}
		signals = append(signals, a.normalize(item))
	}
	return Result{Platform: a.platform, Origin: models.OriginLive, Signals: signals}
}

func (a *ProductHuntAdapter) normalize(item *gofeed.Item) models.CommunitySignal {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	created := a.opts.Now()
	if item.PublishedParsed != nil {
		created = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		created = *item.UpdatedParsed
	}

	s := models.CommunitySignal{
		ID:             "producthunt_" + id,
		Platform:       models.PlatformProductHunt,
		Source:         "Product Hunt",
		Title:          item.Title,
		Content:        item.Description,
		URL:            item.Link,
		SignalStrength: enrichment.RedditStrength(0, 0),
		CreatedAt:      created,
		Origin:         models.OriginLive,
	}
	a.enrich(&s)
	return s
}
