package questiongen

import (
	"context"
	"fmt"
)

// Router serves bank topics offline and sends everything else to the
// fallback generator.
type Router struct {
	Bank     *Bank
	Fallback BatchFetcher
}

// FetchBatch implements BatchFetcher.
func (r *Router) FetchBatch(ctx context.Context, req BatchRequest) ([]Item, error) {
	if r.Bank != nil && r.Bank.Matches(req.Topic) {
		return r.Bank.FetchBatch(ctx, req)
	}
	if r.Fallback == nil {
		return nil, fmt.Errorf("no question source for topic %q: configure an LLM provider", req.Topic)
	}
	return r.Fallback.FetchBatch(ctx, req)
}
