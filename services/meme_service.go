package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// glifWorkflowID identifies the custom meme workflow on the creative
// API; every request posts against this one workflow.
const glifWorkflowID = "clz4xb23q00071120ixtlgzr9"

// MemeGenerator turns a combined per-side context and the original
// query into a meme image URL. The boolean is false when no usable
// image could be produced; exhausting every credential is an expected,
// user-visible outcome rather than an error.
type MemeGenerator interface {
	Generate(ctx context.Context, memeContext, query string) (string, bool)
}

type glifRequest struct {
	ID     string     `json:"id"`
	Inputs glifInputs `json:"inputs"`
}

type glifInputs struct {
	Context string `json:"context"`
	Query   string `json:"query"`
}

type glifResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// glifClient posts to the creative API, rotating through an ordered
// list of credentials until one produces a usable image.
type glifClient struct {
	httpClient *http.Client
	endpoint   string
	apiKeys    []string
}

// NewGlifClient builds the failover client. The key order defines the
// rotation priority; the first key is always tried first.
func NewGlifClient(httpClient *http.Client, endpoint string, apiKeys []string) MemeGenerator {
	return &glifClient{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKeys:    apiKeys,
	}
}

// Generate implements MemeGenerator. Attempts are strictly sequential
// so a single request never bills more than one credential; the first
// usable output wins and stops the rotation.
func (g *glifClient) Generate(ctx context.Context, memeContext, query string) (string, bool) {
	payload := glifRequest{
		ID: glifWorkflowID,
		Inputs: glifInputs{
			Context: memeContext,
			Query:   query,
		},
	}

	for i, apiKey := range g.apiKeys {
		output, err := g.attempt(ctx, apiKey, payload)
		if err != nil {
			log.Printf("MEME: attempt %d/%d failed: %v", i+1, len(g.apiKeys), err)
			continue
		}
		return output, true
	}

	log.Printf("MEME: all %d credentials exhausted, no meme generated", len(g.apiKeys))
	return "", false
}

// attempt performs one POST with one credential. Transport failures,
// non-2xx statuses, undecodable bodies, explicit error fields, and
// empty outputs are all reported the same way so the caller just moves
// on to the next credential.
func (g *glifClient) attempt(ctx context.Context, apiKey string, payload glifRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("api returned status %d", resp.StatusCode)
	}

	var glifResp glifResponse
	if err := json.NewDecoder(resp.Body).Decode(&glifResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if glifResp.Error != "" {
		return "", fmt.Errorf("api error: %s", glifResp.Error)
	}
	if glifResp.Output == "" {
		return "", fmt.Errorf("response contained no output")
	}
	return glifResp.Output, nil
}

// BuildMemeContext combines the two per-side responses into the single
// context string the meme workflow expects.
func BuildMemeContext(redResponse, blueResponse string) string {
	return fmt.Sprintf("Trump: %s\nHarris: %s", redResponse, blueResponse)
}
