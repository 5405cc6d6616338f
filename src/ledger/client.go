// Package ledger talks to the external token ledger and executable-proposal
// targets over their HTTP bridge. The engine only sees the host interfaces;
// this package supplies the production implementations.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

type Config struct {
	BaseURL string
	APIKey  string
}

func FromEnv() Config {
	base := os.Getenv("LEDGER_URL")
	if base == "" {
		base = "http://127.0.0.1:9381"
	}
	return Config{BaseURL: base, APIKey: os.Getenv("LEDGER_API_KEY")}
}

// HTTPLedger implements host.TokenLedger against the ledger bridge.
type HTTPLedger struct {
	cfg    Config
	client *http.Client
}

func NewHTTPLedger(cfg Config) *HTTPLedger {
	return &HTTPLedger{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (l *HTTPLedger) Name(token string) (string, error) {
	var out struct {
		Name string `json:"name"`
	}
	if err := l.get(fmt.Sprintf("/v1/tokens/%s", token), &out); err != nil {
		return "", err
	}
	if out.Name == "" {
		return "", fmt.Errorf("token %s has no identity", token)
	}
	return out.Name, nil
}

func (l *HTTPLedger) BalanceOf(token, account string) (uint64, error) {
	var out struct {
		Balance uint64 `json:"balance"`
	}
	if err := l.get(fmt.Sprintf("/v1/tokens/%s/balances/%s", token, account), &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (l *HTTPLedger) Transfer(token string, amount uint64, from, to, memo string) error {
	payload := map[string]any{
		"amount": amount,
		"from":   from,
		"to":     to,
		"memo":   memo,
	}
	return l.post(fmt.Sprintf("/v1/tokens/%s/transfers", token), payload, nil)
}

// HTTPExecutor implements host.Executor against the same bridge.
type HTTPExecutor struct {
	cfg    Config
	client *http.Client
}

func NewHTTPExecutor(cfg Config) *HTTPExecutor {
	return &HTTPExecutor{
		cfg: cfg,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (e *HTTPExecutor) Execute(target, function string, proposalID uint64) (bool, error) {
	payload := map[string]any{
		"function": function,
		"proposal": proposalID,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	resp, err := doWithRetry(func() (*http.Response, error) {
		req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/targets/%s/execute", e.cfg.BaseURL, target), bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if e.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
		}
		return e.client.Do(req)
	})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("executor returned status %d", resp.StatusCode)
	}
	var out struct {
		Result bool `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Result, nil
}

func (l *HTTPLedger) get(path string, out any) error {
	resp, err := doWithRetry(func() (*http.Response, error) {
		req, err := http.NewRequest("GET", l.cfg.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		if l.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
		}
		return l.client.Do(req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (l *HTTPLedger) post(path string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := doWithRetry(func() (*http.Response, error) {
		req, err := http.NewRequest("POST", l.cfg.BaseURL+path, bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if l.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
		}
		return l.client.Do(req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
