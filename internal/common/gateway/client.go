// Package gateway talks to the decryption gateway that re-encrypts an eligibility verdict for its requester.
package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"eligibility-workers/internal/common/config"
	apperrors "eligibility-workers/internal/common/errors"
	httpclient "eligibility-workers/internal/common/http"
	"eligibility-workers/internal/common/metrics"
	"eligibility-workers/internal/common/observability"
)

const decryptPath = "/api/decrypt-eligibility"

// Decrypter resolves an encrypted verdict for the identity that owns it.
type Decrypter interface {
	Decrypt(ctx context.Context, encrypted []byte, requester string) (*Result, error)
}

// Result is the gateway's answer.
type Result struct {
	Eligible bool   `json:"eligible"`
	Message  string `json:"message"`
}

type decryptRequest struct {
	Encrypted string `json:"encrypted"`
	Requester string `json:"requester"`
}

type Client struct {
	http     *httpclient.Client
	endpoint string
	tracer   trace.Tracer
}

func NewClient(cfg config.GatewayConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, apperrors.NewConfigurationError("gateway.base_url is required")
	}
	return &Client{
		http: httpclient.NewClient(config.GetDuration(cfg.Timeout)).
			WithRetry(cfg.MaxRetries, 250*time.Millisecond),
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + decryptPath,
		tracer:   observability.Tracer("gateway"),
	}, nil
}

// Decrypt never reports a failure as "not eligible": every non-answer is an error.
func (c *Client) Decrypt(ctx context.Context, encrypted []byte, requester string) (res *Result, err error) {
	ctx, span := c.tracer.Start(ctx, "gateway.decrypt", trace.WithAttributes(attribute.String("requester", requester)))
	defer func() { observability.EndSpan(span, err) }()

	if len(encrypted) == 0 {
		return nil, apperrors.NewDecryptionError("empty encrypted verdict")
	}

	var out struct {
		Eligible *bool  `json:"eligible"`
		Message  string `json:"message"`
	}
	req := decryptRequest{Encrypted: hexutil.Encode(encrypted), Requester: requester}

	attempts, err := c.http.PostJSON(ctx, c.endpoint, req, &out)
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		return nil, c.classify(err)
	}
	if out.Eligible == nil {
		metrics.GatewayRequests.WithLabelValues("malformed").Inc()
		return nil, apperrors.NewDecryptionError("gateway response missing 'eligible'")
	}

	metrics.GatewayRequests.WithLabelValues("ok").Inc()
	return &Result{Eligible: *out.Eligible, Message: out.Message}, nil
}

func (c *Client) classify(err error) error {
	var statusErr *httpclient.StatusError
	switch {
	case stderrors.As(err, &statusErr) && statusErr.StatusCode < 500:
		metrics.GatewayRequests.WithLabelValues("rejected").Inc()
		return apperrors.NewDecryptionError(fmt.Sprintf("gateway returned %d: %s", statusErr.StatusCode, statusErr.Body))
	case stderrors.Is(err, httpclient.ErrMalformedResponse):
		metrics.GatewayRequests.WithLabelValues("malformed").Inc()
		return apperrors.NewDecryptionError(err.Error())
	default:
		metrics.GatewayRequests.WithLabelValues("unavailable").Inc()
		return apperrors.NewGatewayUnavailableError(err)
	}
}
