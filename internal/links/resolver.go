package links

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gettokengate/tokengate/internal/core/domain"
)

// RefPlaceholder is the substring of a URL template replaced with the
// reference ID at resolution time.
const RefPlaceholder = "{ref}"

// DefaultTemplate mirrors the stock LMS deep-link shape.
const DefaultTemplate = "https://localhost/goto.php?target=ref_{ref}"

// Resolver maps a reference ID to an absolute redirect URL.
type Resolver interface {
	Resolve(ctx context.Context, refID string) (string, error)
}

// TemplateResolver substitutes the ref ID into a URL template.
type TemplateResolver struct {
	template string
}

// NewTemplateResolver validates the template and returns a resolver.
// An empty template falls back to DefaultTemplate.
func NewTemplateResolver(template string) (*TemplateResolver, error) {
	if template == "" {
		template = DefaultTemplate
	}
	if !strings.Contains(template, RefPlaceholder) {
		return nil, domain.ErrInvalidArgument.WithDetails(
			fmt.Sprintf("link template must contain %s", RefPlaceholder))
	}
	if _, err := url.Parse(strings.ReplaceAll(template, RefPlaceholder, "0")); err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("link template is not a valid URL").WithCause(err)
	}
	return &TemplateResolver{template: template}, nil
}

func (r *TemplateResolver) Resolve(_ context.Context, refID string) (string, error) {
	if refID == "" {
		return "", domain.ErrLinkUnresolved.WithDetails("empty ref id")
	}
	return strings.ReplaceAll(r.template, RefPlaceholder, url.QueryEscape(refID)), nil
}

// StaticResolver serves per-ref overrides and delegates everything else
// to a fallback resolver. With a nil fallback, unmapped refs fail with
// ErrLinkUnresolved.
type StaticResolver struct {
	overrides map[string]string
	fallback  Resolver
}

func NewStaticResolver(overrides map[string]string, fallback Resolver) *StaticResolver {
	m := make(map[string]string, len(overrides))
	for ref, target := range overrides {
		m[ref] = target
	}
	return &StaticResolver{overrides: m, fallback: fallback}
}

func (r *StaticResolver) Resolve(ctx context.Context, refID string) (string, error) {
	if target, ok := r.overrides[refID]; ok {
		return target, nil
	}
	if r.fallback != nil {
		return r.fallback.Resolve(ctx, refID)
	}
	return "", domain.ErrLinkUnresolved.WithDetails(refID)
}
