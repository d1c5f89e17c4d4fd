package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/medrag/internal/core"
)

const defaultTimeout = 120 * time.Second

// baseProvider sends JSON requests with a fixed header set.
type baseProvider struct {
	client  *http.Client
	baseURL string
	headers http.Header
}

func newBaseProvider(baseURL string, headers map[string]string, timeout time.Duration) baseProvider {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	h := make(http.Header, len(headers)+2)
	for k, v := range headers {
		h.Set(k, v)
	}
	h.Set("Content-Type", "application/json")
	h.Set("User-Agent", core.AppUserAgent)

	return baseProvider{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		headers: h,
	}
}

// postJSON posts body to path and returns the status code and the raw response body.
func (b *baseProvider) postJSON(ctx context.Context, path string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = b.headers.Clone()

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, raw, nil
}
