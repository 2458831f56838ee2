package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	apierrors "esgpulse/internal/errors"
	"esgpulse/pkg/contracts/domain"
)

const apiVersion = "2024-02-29-preview"

// LayoutClient calls a remote document-layout analysis service over its
// async REST API: submit bytes, follow the Operation-Location header, poll
// until the operation settles. Calls are rate limited to respect service
// quotas but never retried; a failed analysis fails the document.
type LayoutClient struct {
	endpoint     string
	apiKey       string
	model        string
	pollInterval time.Duration
	limiter      *rate.Limiter
	client       *http.Client
	logger       *slog.Logger
}

// LayoutClientConfig configures the remote client.
type LayoutClientConfig struct {
	Endpoint     string
	APIKey       string
	Model        string
	PollInterval time.Duration
	RateRPS      float64
	RateBurst    int
}

// NewLayoutClient validates the remote configuration and builds a client.
// Missing endpoint or key is a ConfigurationError: processing must not start
// without a usable engine.
func NewLayoutClient(cfg LayoutClientConfig, logger *slog.Logger) (*LayoutClient, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, apierrors.NewConfigurationError("document layout service endpoint and API key are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = domain.ModelLayout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.RateRPS <= 0 {
		cfg.RateRPS = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}
	return &LayoutClient{
		endpoint:     cfg.Endpoint,
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst),
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       logger.With(slog.String("component", "layout_client")),
	}, nil
}

// layoutResponse mirrors the relevant slice of the service's operation
// result payload.
type layoutResponse struct {
	Status        string `json:"status"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	AnalyzeResult *struct {
		Content string `json:"content"`
		Pages   []struct {
			PageNumber int `json:"pageNumber"`
		} `json:"pages"`
		Tables []struct {
			RowCount    int `json:"rowCount"`
			ColumnCount int `json:"columnCount"`
			Cells       []struct {
				RowIndex    int    `json:"rowIndex"`
				ColumnIndex int    `json:"columnIndex"`
				Content     string `json:"content"`
				RowSpan     int    `json:"rowSpan"`
				ColumnSpan  int    `json:"columnSpan"`
			} `json:"cells"`
		} `json:"tables"`
		KeyValuePairs []struct {
			Key *struct {
				Content string `json:"content"`
			} `json:"key"`
			Value *struct {
				Content string `json:"content"`
			} `json:"value"`
			Confidence float64 `json:"confidence"`
		} `json:"keyValuePairs"`
	} `json:"analyzeResult"`
}

// Analyze submits the document and polls the returned operation until it
// succeeds or fails. All failures are wrapped as AnalysisError.
func (c *LayoutClient) Analyze(ctx context.Context, content []byte, filename string) (*domain.AnalysisResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apierrors.NewAnalysisError(filename, err)
	}

	opURL, err := c.submit(ctx, content)
	if err != nil {
		return nil, apierrors.NewAnalysisError(filename, err)
	}

	c.logger.Debug("analysis submitted",
		slog.String("file", filename),
		slog.String("operation", opURL))

	resp, err := c.poll(ctx, opURL)
	if err != nil {
		return nil, apierrors.NewAnalysisError(filename, err)
	}

	return mapResponse(resp), nil
}

// Ping checks service reachability with the informational endpoint.
func (c *LayoutClient) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/documentintelligence/info?api-version=%s", c.endpoint, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("layout service returned status %d", resp.StatusCode)
	}
	return nil
}

// submit posts the document bytes and returns the operation URL to poll.
func (c *LayoutClient) submit(ctx context.Context, content []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, c.model, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("analysis submission failed with status %d: %s", resp.StatusCode, body)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", fmt.Errorf("analysis submission returned no Operation-Location header")
	}
	return opURL, nil
}

// poll fetches the operation result until it leaves the running states.
func (c *LayoutClient) poll(ctx context.Context, opURL string) (*layoutResponse, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("operation poll failed with status %d: %s", resp.StatusCode, body)
		}

		var lr layoutResponse
		if err := json.Unmarshal(body, &lr); err != nil {
			return nil, fmt.Errorf("failed to decode operation result: %w", err)
		}

		switch lr.Status {
		case "succeeded":
			return &lr, nil
		case "failed":
			if lr.Error != nil {
				return nil, fmt.Errorf("analysis operation failed: %s: %s", lr.Error.Code, lr.Error.Message)
			}
			return nil, fmt.Errorf("analysis operation failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// mapResponse converts the service payload into the normalized result shape.
func mapResponse(lr *layoutResponse) *domain.AnalysisResult {
	result := &domain.AnalysisResult{}
	if lr.AnalyzeResult == nil {
		return result
	}

	ar := lr.AnalyzeResult
	result.PageCount = len(ar.Pages)
	result.FullText = ar.Content

	for _, t := range ar.Tables {
		table := domain.AnalyzedTable{
			RowCount:    t.RowCount,
			ColumnCount: t.ColumnCount,
		}
		for _, c := range t.Cells {
			table.Cells = append(table.Cells, domain.AnalyzedCell{
				RowIndex:    c.RowIndex,
				ColumnIndex: c.ColumnIndex,
				Content:     c.Content,
				RowSpan:     c.RowSpan,
				ColumnSpan:  c.ColumnSpan,
			})
		}
		result.Tables = append(result.Tables, table)
	}

	for _, kv := range ar.KeyValuePairs {
		pair := domain.AnalyzedKeyValue{Confidence: kv.Confidence}
		if kv.Key != nil {
			pair.Key = &domain.KVContent{Content: kv.Key.Content}
		}
		if kv.Value != nil {
			pair.Value = &domain.KVContent{Content: kv.Value.Content}
		}
		result.KeyValuePairs = append(result.KeyValuePairs, pair)
	}

	return result
}
