package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"idol-career/career"
)

const (
	DefaultGeminiURL   = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-3-flash-preview"

	maxResponseBytes = 1 << 20
)

var (
	ErrNoCandidate = errors.New("gemini: response has no candidate text")
	ErrIncomplete  = errors.New("gemini: narrative missing title or description")
)

type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL without trailing path, e.g. https://generativelanguage.googleapis.com
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini calls models/{model}:generateContent with a JSON response schema.
type Gemini struct {
	cfg GeminiConfig
}

func NewGemini(cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Gemini{cfg: cfg}, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string       `json:"responseMimeType"`
		ResponseSchema   geminiSchema `json:"responseSchema"`
	} `json:"generationConfig"`
}

var narrativeSchema = geminiSchema{
	Type: "OBJECT",
	Properties: map[string]geminiSchema{
		"title":       {Type: "STRING"},
		"description": {Type: "STRING"},
	},
	Required: []string{"title", "description"},
}

func (g *Gemini) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)
}

// Narrate implements career.Narrator.
func (g *Gemini) Narrate(ctx context.Context, snap career.Snapshot, ev career.EventType) (career.Narrative, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: BuildPrompt(snap, ev)}}}}
	req.GenerationConfig.ResponseMimeType = "application/json"
	req.GenerationConfig.ResponseSchema = narrativeSchema

	body, err := json.Marshal(req)
	if err != nil {
		return career.Narrative{}, fmt.Errorf("gemini: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(body))
	if err != nil {
		return career.Narrative{}, fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return career.Narrative{}, fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return career.Narrative{}, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return career.Narrative{}, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, msg)
	}
	return parseGeminiResponse(raw)
}

func parseGeminiResponse(raw []byte) (career.Narrative, error) {
	if !gjson.ValidBytes(raw) {
		return career.Narrative{}, fmt.Errorf("gemini: malformed response body")
	}
	text := gjson.GetBytes(raw, "candidates.0.content.parts.0.text")
	if !text.Exists() || strings.TrimSpace(text.String()) == "" {
		return career.Narrative{}, ErrNoCandidate
	}
	inner := text.String()
	if !gjson.Valid(inner) {
		return career.Narrative{}, fmt.Errorf("gemini: candidate text is not JSON")
	}
	n := career.Narrative{
		Title:       strings.TrimSpace(gjson.Get(inner, "title").String()),
		Description: strings.TrimSpace(gjson.Get(inner, "description").String()),
	}
	if !n.Complete() {
		return career.Narrative{}, ErrIncomplete
	}
	return n, nil
}

// New returns a Gemini narrator when an API key is configured, otherwise Static.
func New(cfg GeminiConfig) career.Narrator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Static{}
	}
	g, err := NewGemini(cfg)
	if err != nil {
		return Static{}
	}
	return g
}
