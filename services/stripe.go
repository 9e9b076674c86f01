package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StripeProvider talks to the Stripe REST API with form-encoded requests.
// Config is read from the environment per call so a missing key surfaces as
// a request error, not a boot failure.
type StripeProvider struct {
	client *http.Client
}

func NewStripeProvider() *StripeProvider {
	return &StripeProvider{client: &http.Client{}}
}

func stripeConfig() (apiKey, baseURL string, err error) {
	apiKey = os.Getenv("STRIPE_SECRET_KEY")
	if apiKey == "" {
		return "", "", fmt.Errorf("stripe configuration missing")
	}
	baseURL = os.Getenv("STRIPE_API_URL")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return apiKey, strings.TrimSuffix(baseURL, "/"), nil
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// minorUnits converts a decimal currency amount to integer minor units.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (p *StripeProvider) CreateIntent(orderNumber string, amount decimal.Decimal, currency string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(minorUnits(amount), 10))
	form.Set("currency", currency)
	form.Set("description", "Order "+orderNumber)
	form.Set("metadata[order_number]", orderNumber)

	var intent PaymentIntent
	if err := p.do(http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (p *StripeProvider) RetrieveIntent(intentID string) (*PaymentIntent, error) {
	var intent PaymentIntent
	if err := p.do(http.MethodGet, "/v1/payment_intents/"+url.PathEscape(intentID), nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (p *StripeProvider) Refund(intentID string, amount decimal.Decimal) (string, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)
	form.Set("amount", strconv.FormatInt(minorUnits(amount), 10))

	var refund struct {
		ID string `json:"id"`
	}
	if err := p.do(http.MethodPost, "/v1/refunds", form, &refund); err != nil {
		return "", err
	}
	return refund.ID, nil
}

func (p *StripeProvider) do(method, path string, form url.Values, out interface{}) error {
	apiKey, baseURL, err := stripeConfig()
	if err != nil {
		return err
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach stripe: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr stripeError
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe error: %s", apiErr.Error.Message)
		}
		return fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}
