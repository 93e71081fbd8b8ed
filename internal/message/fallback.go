package message

import (
	"context"
	"log"
)

type fallbackProvider struct {
	primary  Provider
	fallback Provider
}

// WithFallback wraps primary so a failure degrades to fallback for
// that single call. The caller never sees the primary's error.
func WithFallback(primary, fallback Provider) Provider {
	return &fallbackProvider{primary: primary, fallback: fallback}
}

func (p *fallbackProvider) Produce(ctx context.Context, mc Context) (string, error) {
	out, err := p.primary.Produce(ctx, mc)
	if err != nil {
		log.Printf("message provider failed for %s, falling back: %v", mc.Type, err)
		return p.fallback.Produce(ctx, mc)
	}
	return out, nil
}
