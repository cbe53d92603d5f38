package coupon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdantia/storefront-backend/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/verdantia/storefront-backend/pkg/coupon"

// Client calls a remote coupon validation service
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new coupon client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Validate asks the service whether code is redeemable. A well-formed
// rejection is returned as a response with Valid false, not as an error.
// Any non-2xx answer is a rejection whatever its body says.
func (c *Client) Validate(ctx context.Context, code string) (*ValidateResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "coupon.validate", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("coupon.code", code))

	status, resp, err := c.doRequest(ctx, "validate", ValidateRequest{Code: code})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var out ValidateResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		err = fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if status >= http.StatusMultipleChoices {
		out.Valid = false
	}

	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Bool("coupon.valid", out.Valid),
	)
	return &out, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string, payload interface{}) (int, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.config.BaseURL, endpoint)
	logger.Debug("Calling coupon service", map[string]interface{}{
		"url": url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Rejections come back as 4xx with a descriptor body.
	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, nil, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	return resp.StatusCode, body, nil
}
