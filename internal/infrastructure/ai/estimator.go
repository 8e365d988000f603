// Package ai implements the LLM-backed price estimator on a local Ollama
// instance.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/scribehub/writing-marketplace/internal/api/metrics"
	"github.com/scribehub/writing-marketplace/internal/core/ports"
)

const defaultTimeout = 20 * time.Second

// Estimator asks a local model for a one-shot USD price for an order.
// It implements ports.PriceEstimator.
type Estimator struct {
	api     *api.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewEstimator builds an Estimator for the given Ollama base URL and model.
func NewEstimator(baseURL, model string, timeout time.Duration, log zerolog.Logger) (*Estimator, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Estimator{
		api:     api.NewClient(u, &http.Client{Timeout: timeout}),
		model:   model,
		timeout: timeout,
		log:     log,
	}, nil
}

// estimateResponse is the JSON object the prompt instructs the model to emit.
type estimateResponse struct {
	Price float64 `json:"price"`
}

func (e *Estimator) Estimate(ctx context.Context, input ports.QuoteInput) (float64, error) {
	prompt := buildPrompt(input)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stream := false
	req := &api.GenerateRequest{
		Model:  e.model,
		Prompt: prompt,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	var out strings.Builder
	err := e.api.Generate(ctx, req, func(r api.GenerateResponse) error {
		out.WriteString(r.Response)
		return nil
	})
	if err != nil {
		metrics.AIEstimatesTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("ollama generate: %w", err)
	}

	price, err := parsePrice(out.String())
	if err != nil {
		metrics.AIEstimatesTotal.WithLabelValues("error").Inc()
		e.log.Warn().Err(err).Str("raw", out.String()).Msg("unusable model estimate")
		return 0, err
	}
	metrics.AIEstimatesTotal.WithLabelValues("ok").Inc()
	return price, nil
}

func buildPrompt(input ports.QuoteInput) string {
	var b strings.Builder
	b.WriteString("You price academic writing work for a marketplace. ")
	b.WriteString("Respond with a single JSON object of the form {\"price\": <number>} ")
	b.WriteString("giving a fair USD price. No other text.\n\n")
	fmt.Fprintf(&b, "Order type: %s\n", input.Type)
	if input.PackageType != "" {
		fmt.Fprintf(&b, "Package: %s\n", input.PackageType)
	}
	if input.Complexity != "" {
		fmt.Fprintf(&b, "Complexity: %s\n", input.Complexity)
	}
	if input.Pages > 0 {
		fmt.Fprintf(&b, "Pages: %d\n", input.Pages)
	}
	if input.Slides > 0 {
		fmt.Fprintf(&b, "Slides: %d\n", input.Slides)
	}
	if input.Weeks > 0 {
		fmt.Fprintf(&b, "Course length: %d weeks\n", input.Weeks)
	}
	if input.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", input.Description)
	}
	return b.String()
}

// parsePrice pulls the JSON object out of the model output; models sometimes
// wrap it in prose or markdown fences.
func parsePrice(s string) (float64, error) {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first == -1 || last < first {
		return 0, errors.New("no JSON object in model output")
	}

	var resp estimateResponse
	if err := json.Unmarshal([]byte(s[first:last+1]), &resp); err != nil {
		return 0, fmt.Errorf("decode model output: %w", err)
	}
	if resp.Price <= 0 {
		return 0, errors.New("model returned non-positive price")
	}
	return resp.Price, nil
}
