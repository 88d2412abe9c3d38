package douyin

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	errs "dyscraper/pkg/errors"
)

// Signer computes the X-Bogus request signature for an unsigned URL and
// the user agent the request will be sent with
type Signer interface {
	Sign(ctx context.Context, unsignedURL, userAgent string) (string, error)
}

// SignerFunc adapts a function to the Signer interface
type SignerFunc func(ctx context.Context, unsignedURL, userAgent string) (string, error)

func (f SignerFunc) Sign(ctx context.Context, unsignedURL, userAgent string) (string, error) {
	return f(ctx, unsignedURL, userAgent)
}

// RemoteSigner delegates signing to an HTTP signing service. The service
// receives {"url", "user_agent"} and answers {"x_bogus"}.
type RemoteSigner struct {
	endpoint string
	http     *resty.Client
}

type signRequest struct {
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
}

type signResponse struct {
	XBogus string `json:"x_bogus"`
}

// NewRemoteSigner creates a signer backed by the service at endpoint
func NewRemoteSigner(endpoint string) *RemoteSigner {
	return &RemoteSigner{
		endpoint: endpoint,
		http:     resty.New().SetTimeout(30 * time.Second).SetRetryCount(connectionRetries),
	}
}

func (s *RemoteSigner) Sign(ctx context.Context, unsignedURL, userAgent string) (string, error) {
	var out signResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(signRequest{URL: unsignedURL, UserAgent: userAgent}).
		SetResult(&out).
		Post(s.endpoint)
	if err != nil {
		return "", errs.Wrap(errs.ErrorTypeNetwork, "signing service unreachable", err)
	}
	if resp.IsError() {
		return "", errs.WithCode(errs.TypeForStatus(resp.StatusCode()),
			fmt.Sprintf("signing service returned %d", resp.StatusCode()), resp.StatusCode())
	}
	if out.XBogus == "" {
		return "", errs.New(errs.ErrorTypeParsing, "signing service returned an empty signature")
	}
	return out.XBogus, nil
}

// RequestBuilder appends signatures to listing URLs
type RequestBuilder struct {
	signer    Signer
	userAgent string
}

// NewRequestBuilder creates a builder that signs for userAgent
func NewRequestBuilder(signer Signer, userAgent string) *RequestBuilder {
	return &RequestBuilder{signer: signer, userAgent: userAgent}
}

// Build returns unsignedURL with the X-Bogus parameter appended
func (b *RequestBuilder) Build(ctx context.Context, unsignedURL string) (string, error) {
	sig, err := b.signer.Sign(ctx, unsignedURL, b.userAgent)
	if err != nil {
		return "", fmt.Errorf("signing %s: %w", unsignedURL, err)
	}
	return unsignedURL + "&X-Bogus=" + sig, nil
}
