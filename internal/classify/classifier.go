// internal/classify/classifier.go
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

// Analysis is the structured outcome of classifying one review.
type Analysis struct {
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	SuggestedCategories []string `json:"suggested_categories,omitempty"`
}

// Classifier extracts strength and weakness categories from review text
// through an Ollama-compatible generation endpoint. Responses are
// constrained to a JSON schema so the output parses deterministically.
type Classifier struct {
	client   *resty.Client
	model    string
	registry *CategoryRegistry
	retry    utils.RetryPolicy
	log      utils.Logger
}

// NewClassifier creates a classifier against the configured endpoint.
func NewClassifier(cfg *config.ClassifyConfig, registry *CategoryRegistry) (*Classifier, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("classification endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("classification model is required")
	}
	if registry == nil {
		registry = NewRegistry()
	}

	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	client := resty.New().
		SetBaseURL(cfg.Endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Classifier{
		client:   client,
		model:    cfg.Model,
		registry: registry,
		retry:    cfg.Retry.Policy(),
		log:      utils.NewComponentLogger("classifier"),
	}, nil
}

// Registry returns the category registry the classifier validates
// against.
func (c *Classifier) Registry() *CategoryRegistry { return c.registry }

const promptTemplate = `You are an analyst extracting opinions from movie reviews. Given the following review title and content, categorize the strengths and weaknesses into the predefined categories below. Only include categories explicitly supported by the review text. Use ONLY the category titles in "strengths" and "weaknesses" lists, not their descriptions. If the predefined categories aren't sufficient, suggest new atomic and generalizable categories under "suggested_categories", providing both a title and a brief description for each. Ensure suggested categories match any new titles used in "strengths" or "weaknesses".

Predefined Strength Categories (title: description):
%s
Predefined Weakness Categories (title: description):
%s
Review Title: %s
Review Content: %s

Return ONLY valid JSON matching the schema.`

// responseSchema constrains the model output. Ollama accepts a JSON
// schema in the request's format field.
var responseSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"strengths":  map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"weaknesses": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"suggested_categories": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       map[string]interface{}{"type": "string"},
					"description": map[string]interface{}{"type": "string"},
				},
				"required": []string{"title", "description"},
			},
		},
	},
	"required": []string{"strengths", "weaknesses"},
}

type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  map[string]interface{} `json:"format"`
	Options map[string]interface{} `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type rawAnalysis struct {
	Strengths           []string            `json:"strengths"`
	Weaknesses          []string            `json:"weaknesses"`
	SuggestedCategories []SuggestedCategory `json:"suggested_categories"`
}

// Classify analyzes one review. Empty or placeholder content yields an
// empty analysis without touching the endpoint.
func (c *Classifier) Classify(ctx context.Context, title, content string) (*Analysis, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.EqualFold(trimmed, "n/a") {
		c.log.Debugf("skipping empty review %q", title)
		return &Analysis{}, nil
	}

	prompt := fmt.Sprintf(promptTemplate,
		c.registry.StrengthLines(),
		c.registry.WeaknessLines(),
		title,
		content,
	)

	var raw rawAnalysis
	err := c.retry.Do(ctx, func() error {
		var out generateResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetBody(generateRequest{
				Model:   c.model,
				Prompt:  prompt,
				Stream:  false,
				Format:  responseSchema,
				Options: map[string]interface{}{"temperature": 0},
			}).
			SetResult(&out).
			Post("/api/generate")
		if err != nil {
			return fmt.Errorf("generation request: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("generation endpoint returned %s", resp.Status())
		}
		if err := json.Unmarshal([]byte(out.Response), &raw); err != nil {
			return fmt.Errorf("malformed model output: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", title, err)
	}

	suggested := make([]string, 0, len(raw.SuggestedCategories))
	for _, cat := range raw.SuggestedCategories {
		c.registry.Promote(cat, raw.Strengths, raw.Weaknesses)
		suggested = append(suggested, cat.Title)
	}

	analysis := &Analysis{
		Strengths:           c.registry.FilterStrengths(raw.Strengths),
		Weaknesses:          c.registry.FilterWeaknesses(raw.Weaknesses),
		SuggestedCategories: suggested,
	}
	if len(analysis.Strengths) != len(raw.Strengths) || len(analysis.Weaknesses) != len(raw.Weaknesses) {
		c.log.Warnf("filtered unknown categories for review %q", title)
	}
	return analysis, nil
}
