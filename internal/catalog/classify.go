package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
	"github.com/photon-dotcom/brandswitch/internal/store"
	"github.com/photon-dotcom/brandswitch/pkg/anthropic"
)

const classifySystemPrompt = `You classify online shops into categories. You are given brand names with their domains. Respond with a single JSON object mapping each domain to exactly one category from the allowed list. Use "unknown" when you cannot tell and "junk" for spam or non-shop domains. No other values are allowed.`

const classifyUserPrompt = `Allowed categories: %s

Brands:
%s

Respond with only the JSON object.`

// ClassifierOptions configures the paid classification pass.
type ClassifierOptions struct {
	Model     string
	BatchSize int
}

// ClassifyDomains is the paid half of strategy 3: uncategorized domains
// absent from the cache are submitted in fixed-size batches. Results are
// merged into the cache after every batch so partial progress survives an
// interruption, then applied to the brands. A malformed batch response is
// skipped, never fatal.
func ClassifyDomains(ctx context.Context, client anthropic.Client, st store.Store, brands []model.Brand, pending []int, opts ClassifierOptions) error {
	if client == nil || len(pending) == 0 {
		return nil
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 40
	}

	valid := make(map[string]bool)
	for _, c := range ValidCategories() {
		valid[c] = true
	}

	classified := 0
	for start := 0; start < len(pending); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(pending))
		batch := pending[start:end]

		results, err := classifyBatch(ctx, client, brands, batch, opts.Model)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			zap.L().Warn("classify: batch skipped", zap.Error(err))
			continue
		}

		// Keep only vocabulary labels and the two sentinels.
		accepted := make(map[string]string, len(results))
		for domain, label := range results {
			if valid[label] || label == store.CategoryUnknown || label == store.CategoryJunk {
				accepted[domain] = label
			}
		}

		// Merge into the cache before applying: a later crash must not
		// re-bill these domains.
		if st != nil {
			if err := st.PutClassifications(ctx, accepted); err != nil {
				return err
			}
		}

		for _, i := range batch {
			if label, ok := accepted[brands[i].Domain]; ok && valid[label] {
				setInferredCategory(&brands[i], label)
				classified++
			}
		}
	}

	zap.L().Info("classify: paid pass complete",
		zap.Int("submitted", len(pending)),
		zap.Int("classified", classified),
	)
	return nil
}

func classifyBatch(ctx context.Context, client anthropic.Client, brands []model.Brand, batch []int, modelID string) (map[string]string, error) {
	var lines []string
	for _, i := range batch {
		lines = append(lines, fmt.Sprintf("- %s (%s)", brands[i].Name, brands[i].Domain))
	}

	prompt := fmt.Sprintf(classifyUserPrompt,
		strings.Join(ValidCategories(), ", "),
		strings.Join(lines, "\n"),
	)

	resp, err := client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     modelID,
		MaxTokens: 2048,
		System:    classifySystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	return parseClassifyResponse(resp.Text())
}

// parseClassifyResponse extracts the domain→category object from free-form
// response text, tolerating prose around the JSON.
func parseClassifyResponse(text string) (map[string]string, error) {
	cleaned := extractJSONObject(text)
	if cleaned == "" {
		return nil, fmt.Errorf("classify: no JSON object in response")
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("classify: parse response: %w", err)
	}
	return out, nil
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
