package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lexanon/lexanon/config"
	"github.com/lexanon/lexanon/internal"
	"github.com/lexanon/lexanon/pkg/models"
)

// Force compiler to validate that HTTPOracle implements EntityOracle.
var _ models.EntityOracle = &HTTPOracle{}

// HTTPOracle labels spans by calling a remote NLP server. The client
// retries failed requests; a request that still fails is surfaced to the
// extractor, which degrades to an empty model-derived candidate list.
type HTTPOracle struct {
	serverURL string
	language  string
	client    *http.Client
}

func NewHTTPOracle(cfg *config.Config) *HTTPOracle {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.NLP.MaxAttempts
	retryClient.Logger = internal.NewLeveledLogrus(log)
	retryClient.HTTPClient.Timeout = time.Duration(cfg.NLP.TimeoutSeconds) * time.Second

	return &HTTPOracle{
		serverURL: cfg.NLP.ServerURL,
		language:  cfg.NLP.Language,
		client:    retryClient.StandardClient(),
	}
}

func (o *HTTPOracle) Name() string {
	return "http"
}

type labelRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type labelResponse struct {
	Entities []models.SpanLabel `json:"entities"`
}

// LabelSpans POSTs the text to the NLP server and returns the reported
// spans. Offsets are byte offsets into the exact text passed.
func (o *HTTPOracle) LabelSpans(ctx context.Context, text string) ([]models.SpanLabel, error) {
	jsonBody, err := json.Marshal(labelRequest{Text: text, Language: o.language})
	if err != nil {
		return nil, fmt.Errorf("error marshaling oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		o.serverURL+"/entities",
		bytes.NewBuffer(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating oracle request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling NLP server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NLP server returned status %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading oracle response: %w", err)
	}

	var response labelResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, fmt.Errorf("error unmarshaling oracle response: %w", err)
	}

	return response.Entities, nil
}

// Ping checks that the NLP server is reachable. Used at startup only.
func (o *HTTPOracle) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.serverURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NLP server health check returned status %d", resp.StatusCode)
	}
	return nil
}
