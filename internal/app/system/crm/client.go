// internal/app/system/crm/client.go
package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// ContractRecord is the wire form of a contract in the CRM feeds.
type ContractRecord struct {
	ID          string    `json:"id"`
	OwnerEmail  string    `json:"owner_email"`
	ClientName  string    `json:"client_name"`
	ClientCPF   string    `json:"client_cpf"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	Promotora   string    `json:"promotora"`
	Tabela      string    `json:"tabela"`
	TipoEmpresa string    `json:"tipo_empresa"`
}

// Source is one external system contracts are pulled from.
type Source interface {
	// Name identifies the source in logs and audit entries.
	Name() string
	// FetchContracts returns records updated since the given time.
	FetchContracts(ctx context.Context, since time.Time) ([]ContractRecord, error)
}

// MapStatus translates a feed status into the contract lifecycle values.
// Workbank reports in English; the internal CRM already uses ours.
func MapStatus(s string) (string, bool) {
	switch s {
	case "paid", "pago":
		return "pago", true
	case "pending", "pendente":
		return "pendente", true
	case "cancelled", "canceled", "cancelado":
		return "cancelado", true
	}
	return "", false
}

type contractsPayload struct {
	Contracts []ContractRecord `json:"contracts"`
}

func fetchContracts(ctx context.Context, client *http.Client, baseURL string, since time.Time, auth func(*http.Request)) ([]ContractRecord, error) {
	u, err := url.Parse(baseURL + "/v1/contracts")
	if err != nil {
		return nil, fmt.Errorf("crm: bad base url: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("updated_since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if auth != nil {
		auth(req)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("crm: fetch contracts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crm: fetch contracts: unexpected status %d", resp.StatusCode)
	}

	var payload contractsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("crm: decode contracts: %w", err)
	}
	return payload.Contracts, nil
}

/* --- Workbank (OAuth2 client credentials) --- */

// WorkbankConfig configures the Workbank API client.
type WorkbankConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// WorkbankClient pulls contracts from the Workbank API. Token acquisition
// and refresh are handled by the oauth2 client credentials flow.
type WorkbankClient struct {
	baseURL string
	client  *http.Client
}

// NewWorkbank creates a Workbank client.
func NewWorkbank(cfg WorkbankConfig) *WorkbankClient {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	return &WorkbankClient{
		baseURL: cfg.BaseURL,
		client:  cc.Client(context.Background()),
	}
}

func (c *WorkbankClient) Name() string { return "workbank" }

func (c *WorkbankClient) FetchContracts(ctx context.Context, since time.Time) ([]ContractRecord, error) {
	return fetchContracts(ctx, c.client, c.baseURL, since, nil)
}

/* --- Internal CRM (static API key) --- */

// InternalConfig configures the internal CRM client.
type InternalConfig struct {
	BaseURL string
	APIKey  string
}

// InternalClient pulls contracts from the in-house CRM, which
// authenticates with a static API key header.
type InternalClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewInternal creates an internal CRM client.
func NewInternal(cfg InternalConfig) *InternalClient {
	return &InternalClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *InternalClient) Name() string { return "crm" }

func (c *InternalClient) FetchContracts(ctx context.Context, since time.Time) ([]ContractRecord, error) {
	return fetchContracts(ctx, c.client, c.baseURL, since, func(r *http.Request) {
		r.Header.Set("X-API-Key", c.apiKey)
	})
}
