// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"planora/models"
)

// Fixed sampling budget for scheduling decisions. Low temperature for a
// reproducibility bias, small output cap since the reply is one JSON object.
const (
	rankingTemperature     = 0.3
	rankingMaxOutputTokens = 200
)

// GeminiRanker ranks free slots with the Gemini API. Calls are
// rate-limited client-side and bounded by a per-call timeout.
type GeminiRanker struct {
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	timeout time.Duration
}

// NewGeminiRanker creates a Gemini-backed slot ranker.
func NewGeminiRanker(apiKey, modelName string, timeout time.Duration) (*GeminiRanker, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(rankingTemperature)
	model.SetMaxOutputTokens(rankingMaxOutputTokens)

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GeminiRanker{
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		timeout: timeout,
	}, nil
}

// RankSlots sends one ranking request and parses the JSON reply.
func (g *GeminiRanker) RankSlots(ctx context.Context, req RankRequest) (*models.RankingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("gemini rate limit wait: %w", err)
	}

	prompt := BuildRankingPrompt(req)
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty candidates", ErrMalformedResponse)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return ParseRankingResult(sb.String())
}
