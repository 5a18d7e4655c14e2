package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// tokenExpirySlack refreshes the cached bearer token this long before the
// provider-reported expiry, so an in-flight call never rides a dying token.
const tokenExpirySlack = 60 * time.Second

// HTTPProvider talks to the payment gateway's merchant API: bearer login,
// charge creation and charge status lookup, all keyed by order number.
type HTTPProvider struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	client       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewHTTPProvider(baseURL, clientID, clientSecret string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		client:       &http.Client{Timeout: timeout},
	}
}

type authReq struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type authResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// getToken returns the cached bearer token, logging in again when it is
// missing or near expiry.
func (p *HTTPProvider) getToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Before(p.tokenExpiry.Add(-tokenExpirySlack)) {
		return p.token, nil
	}
	body, _ := json.Marshal(authReq{ClientID: p.ClientID, ClientSecret: p.ClientSecret})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/auth/token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway login failed: %d", resp.StatusCode)
	}
	var out authResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("gateway login returned empty token")
	}
	p.token = out.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return p.token, nil
}

type chargeReq struct {
	OrderNumber    string   `json:"order_number"`
	Amount         int64    `json:"amount"`
	Description    string   `json:"description"`
	PaymentMethods []string `json:"payment_methods"`
}

type chargeResp struct {
	ChargeID string `json:"charge_id"`
	Status   string `json:"status"`
	LinkURL  string `json:"link_url"`
}

func (p *HTTPProvider) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("gateway auth: %w", err)
	}
	payload := chargeReq{
		OrderNumber:    req.OrderNumber,
		Amount:         req.AmountCents,
		Description:    req.Description,
		PaymentMethods: req.PaymentMethods,
	}
	body, _ := json.Marshal(payload)
	apiReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	apiReq.Header.Set("Content-Type", "application/json")
	apiReq.Header.Set("Authorization", "Bearer "+token)
	log.Debug().Str("component", "gateway").Str("order_number", req.OrderNumber).
		Int64("amount_cents", req.AmountCents).Msg("creating charge")
	resp, err := p.client.Do(apiReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway charge: %d %s", resp.StatusCode, string(respBody))
	}
	var out chargeResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	return &ChargeResponse{ChargeID: out.ChargeID, Status: out.Status, LinkURL: out.LinkURL}, nil
}

type chargeStatusResp struct {
	Status string `json:"status"`
}

func (p *HTTPProvider) GetChargeStatus(ctx context.Context, orderNumber string) (string, error) {
	token, err := p.getToken(ctx)
	if err != nil {
		return "", fmt.Errorf("gateway auth: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/charges/"+orderNumber, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway status: %d %s", resp.StatusCode, string(respBody))
	}
	var out chargeStatusResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
