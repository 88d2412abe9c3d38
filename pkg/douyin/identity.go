package douyin

import (
	"context"
	"fmt"
	"regexp"

	errs "dyscraper/pkg/errors"
)

var (
	userPathPattern  = regexp.MustCompile(`user/([-\w]+)`)
	shortLinkPattern = regexp.MustCompile(`https://v.douyin.com/(\w+)/`)
)

// RedirectFollower resolves a URL to the location it finally redirects to
type RedirectFollower interface {
	FinalURL(ctx context.Context, url string) (string, error)
}

// Resolver turns a profile URL or share link into a creator's secUID
type Resolver struct {
	follower RedirectFollower
}

// NewResolver creates a resolver that follows share links through follower
func NewResolver(follower RedirectFollower) *Resolver {
	return &Resolver{follower: follower}
}

// Resolve extracts the secUID from input. A full profile URL is parsed
// directly; a share link is followed to its profile URL. Anything else
// is an invalid input error.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	if m := userPathPattern.FindStringSubmatch(input); m != nil {
		return m[1], nil
	}

	short := shortLinkPattern.FindString(input)
	if short == "" {
		return "", errs.New(errs.ErrorTypeInvalidInput, fmt.Sprintf("unrecognised creator url %q", input))
	}

	final, err := r.follower.FinalURL(ctx, short)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeInvalidInput, fmt.Sprintf("failed to resolve share link %q", short), err)
	}

	if m := userPathPattern.FindStringSubmatch(final); m != nil {
		return m[1], nil
	}
	return "", errs.New(errs.ErrorTypeInvalidInput, fmt.Sprintf("share link %q redirected to %q without a user id", short, final))
}
