package signals

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/models"
)

// YouTubeAdapter serves synthetic signals only. The Data API needs a key and
// quota management that is not wired up, so live mode still returns the mock set.
type YouTubeAdapter struct {
	base
}

// NewYouTubeAdapter creates the YouTube adapter.
func NewYouTubeAdapter(opts AdapterOptions, logger *zap.Logger) *YouTubeAdapter {
	return &YouTubeAdapter{base: newBase(models.PlatformYouTube, opts, logger)}
}

// Fetch returns the mock set for non-blank keywords.
func (a *YouTubeAdapter) Fetch(_ context.Context, keyword string) Result {
	keyword = cleanKeyword(keyword)
	if r, ok := a.shortCircuit(keyword); ok {
		return r
	}
	return mockResult(a.platform, keyword, a.opts.Now(), nil)
}
