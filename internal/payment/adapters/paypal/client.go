package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
)

// Tokens are refreshed this long before PayPal says they expire.
const tokenExpirySkew = 60 * time.Second

type apiClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func newAPIClient(baseURL string, clientID string, clientSecret string) *apiClient {
	return &apiClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: 12 * time.Second},
		now:          time.Now,
	}
}

func (c *apiClient) configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

type paypalPayment struct {
	ID           string              `json:"id,omitempty"`
	Intent       string              `json:"intent"`
	State        string              `json:"state,omitempty"`
	Payer        paypalPayer         `json:"payer"`
	Transactions []paypalTransaction `json:"transactions"`
	RedirectURLs *paypalRedirectURLs `json:"redirect_urls,omitempty"`
	Links        []paypalLink        `json:"links,omitempty"`
}

type paypalPayer struct {
	PaymentMethod string `json:"payment_method"`
}

type paypalRedirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

type paypalTransaction struct {
	ItemList    *paypalItemList `json:"item_list,omitempty"`
	Amount      paypalAmount    `json:"amount"`
	Description string          `json:"description,omitempty"`
	Custom      string          `json:"custom,omitempty"`
}

type paypalItemList struct {
	Items []paypalItem `json:"items"`
}

type paypalItem struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
}

type paypalAmount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type paypalLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Decline names PayPal reports on a payer-side refusal rather than a
// request problem.
var declineNames = map[string]bool{
	"INSTRUMENT_DECLINED":   true,
	"PAYER_CANNOT_PAY":      true,
	"PAYMENT_DENIED":        true,
	"TRANSACTION_REFUSED":   true,
	"CREDIT_CARD_REFUSED":   true,
	"PAYER_ACTION_REQUIRED": true,
}

func (c *apiClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", paymentdomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", paymentdomain.ErrMisconfigured
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", paymentdomain.ErrProviderUnavailable
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: undecodable token response", paymentdomain.ErrProviderUnavailable)
	}
	if strings.TrimSpace(body.AccessToken) == "" {
		return "", paymentdomain.ErrMisconfigured
	}

	c.accessToken = body.AccessToken
	ttl := time.Duration(body.ExpiresIn) * time.Second
	if ttl > tokenExpirySkew {
		ttl -= tokenExpirySkew
	}
	c.tokenExpiry = c.now().Add(ttl)
	return c.accessToken, nil
}

func (c *apiClient) createPayment(ctx context.Context, payment paypalPayment) (*paypalPayment, error) {
	return c.doPayment(ctx, http.MethodPost, "/v1/payments/payment", payment)
}

func (c *apiClient) getPayment(ctx context.Context, paymentID string) (*paypalPayment, error) {
	return c.doPayment(ctx, http.MethodGet, "/v1/payments/payment/"+paymentID, nil)
}

func (c *apiClient) executePayment(ctx context.Context, paymentID string, payerID string) (*paypalPayment, error) {
	body := map[string]string{"payer_id": payerID}
	return c.doPayment(ctx, http.MethodPost, "/v1/payments/payment/"+paymentID+"/execute", body)
}

func (c *apiClient) doPayment(ctx context.Context, method string, path string, body any) (*paypalPayment, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var payment paypalPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("%w: undecodable response", paymentdomain.ErrProviderUnavailable)
	}
	return &payment, nil
}

func (c *apiClient) decodeError(resp *http.Response) error {
	var apiErr errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	name := strings.ToUpper(strings.TrimSpace(apiErr.Name))
	message := strings.TrimSpace(apiErr.Message)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return paymentdomain.ErrMisconfigured
	case resp.StatusCode == http.StatusNotFound:
		return paymentdomain.ErrPaymentNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return paymentdomain.ErrProviderUnavailable
	case declineNames[name]:
		if message == "" {
			message = name
		}
		return fmt.Errorf("%w: %s", paymentdomain.ErrProviderRejected, message)
	default:
		if message == "" {
			return paymentdomain.ErrInvalidRequest
		}
		return fmt.Errorf("%w: %s", paymentdomain.ErrInvalidRequest, message)
	}
}
