// Package synthesis rewrites an article with a generative model. The prompt
// asks for a rewritten title, a short engaging summary, and a references
// section listing the research sources verbatim. Model output is returned
// unmodified; no length or format enforcement is applied.
package synthesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillhq/article-refinery/pkg/httpclient"
)

// ModelError reports a failed model invocation.
type ModelError struct {
	Model string
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Model, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Rewriter invokes the Gemini generateContent API.
type Rewriter struct {
	client  httpclient.Client
	baseURL string
	model   string
	apiKey  string
}

// NewRewriter builds a rewriter against the given API base URL
// (e.g. https://generativelanguage.googleapis.com/v1beta).
func NewRewriter(client httpclient.Client, baseURL, model, apiKey string) *Rewriter {
	return &Rewriter{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
	}
}

// Rewrite asks the model for enriched content for the title, citing the given
// sources. The raw completion text is returned as-is.
func (r *Rewriter) Rewrite(ctx context.Context, title string, sources []string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(title, sources)}}}},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", r.baseURL, r.model)
	headers := map[string]string{
		"Content-Type":   "application/json",
		"x-goog-api-key": r.apiKey,
	}

	resp, err := r.client.Post(ctx, url, headers, payload)
	if err != nil {
		return "", &ModelError{Model: r.model, Err: err}
	}
	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return "", &ModelError{Model: r.model, Err: fmt.Errorf("status %d: %s", resp.StatusCode(), snippet)}
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &ModelError{Model: r.model, Err: fmt.Errorf("decode response: %w", err)}
	}

	text := out.text()
	if text == "" {
		return "", &ModelError{Model: r.model, Err: errors.New("empty completion")}
	}
	return text, nil
}

// buildPrompt composes the single editorial prompt. Sources are embedded one
// per line, in the order received.
func buildPrompt(title string, sources []string) string {
	var b strings.Builder
	b.WriteString("Act as a senior tech editor.\n")
	fmt.Fprintf(&b, "Rewrite this article title: %q.\n", title)
	b.WriteString("Write a 200-word engaging summary about this topic.\n\n")
	b.WriteString("CRITICAL: At the very bottom, add a \"References\" section listing these URLs:\n")
	b.WriteString(strings.Join(sources, "\n"))
	return b.String()
}

// Wire types for the generateContent API.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// text joins the parts of the first candidate.
func (g generateResponse) text() string {
	if len(g.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range g.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
