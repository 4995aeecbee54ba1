package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
)

type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newAPIClient(baseURL string, apiKey string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type createIntentParams struct {
	AmountCents    int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *apiClient) createPaymentIntent(ctx context.Context, params createIntentParams) (*paymentIntent, error) {
	values := url.Values{}
	values.Set("amount", strconv.FormatInt(params.AmountCents, 10))
	values.Set("currency", params.Currency)
	values.Set("automatic_payment_methods[enabled]", "true")
	if params.Description != "" {
		values.Set("description", params.Description)
	}
	for key, value := range params.Metadata {
		if strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		values.Set("metadata["+key+"]", value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if params.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", params.IdempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeout on create is an unknown outcome, never a firm failure;
		// the webhook pipeline settles it.
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var intent paymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", paymentdomain.ErrProviderUnavailable)
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, fmt.Errorf("%w: missing payment intent id", paymentdomain.ErrProviderRejected)
	}
	return &intent, nil
}

func (c *apiClient) decodeError(resp *http.Response) error {
	var apiErr errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	message := strings.TrimSpace(apiErr.Error.Message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return paymentdomain.ErrMisconfigured
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return paymentdomain.ErrProviderUnavailable
	case apiErr.Error.Type == "card_error":
		if message == "" {
			message = "card declined"
		}
		return fmt.Errorf("%w: %s", paymentdomain.ErrProviderRejected, message)
	default:
		if message == "" {
			return paymentdomain.ErrInvalidRequest
		}
		return fmt.Errorf("%w: %s", paymentdomain.ErrInvalidRequest, message)
	}
}
