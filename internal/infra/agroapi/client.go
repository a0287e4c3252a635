package agroapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

const defaultBaseURL = "http://localhost:8000"

// AnalyzeRequest is the payload sent to the health analysis endpoint.
type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	PlantType   string `json:"plant_type,omitempty"`
	Language    string `json:"language"`
}

// Disease mirrors the backend disease structure. Confidence arrives on a
// 0-100 scale.
type Disease struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
}

// AnalyzeResponse is the authoritative diagnosis from the remote AI.
type AnalyzeResponse struct {
	PlantType       string    `json:"plant_type"`
	HealthStatus    string    `json:"health_status"`
	Diseases        []Disease `json:"diseases"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	Summary         string    `json:"summary"`
}

// ChatTurn is one line of prior conversation sent for context.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload for the plant persona chat endpoint.
type ChatRequest struct {
	Message             string     `json:"message"`
	PlantType           string     `json:"plant_type"`
	HealthStatus        string     `json:"health_status"`
	Diseases            []string   `json:"diseases"`
	ConversationHistory []ChatTurn `json:"conversation_history"`
	Language            string     `json:"language"`
}

// ChatResponse carries the plant's reply.
type ChatResponse struct {
	Response string `json:"response"`
	Emotion  string `json:"emotion"`
	Tip      string `json:"tip,omitempty"`
}

// SoilWeatherRequest asks for weather plus optional soil analysis.
type SoilWeatherRequest struct {
	ImageBase64 string  `json:"image_base64,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Language    string  `json:"language"`
}

// SightingRequest reports a pest sighting observed in the field.
type SightingRequest struct {
	Pest       string    `json:"pest"`
	Severity   string    `json:"severity"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Notes      string    `json:"notes,omitempty"`
	ObservedAt time.Time `json:"observed_at"`
}

// Client performs HTTP requests against the remote analysis backend. Every
// call is bounded by the configured timeout; callers get distinct error
// codes for timeouts, unreachability, and the domain rejection of images
// that show neither plant nor soil.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(url, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// AnalyzeHealth submits a plant image for diagnosis.
func (c *Client) AnalyzeHealth(ctx context.Context, req AnalyzeRequest) (AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post(ctx, "/api/analyze-health", req, &resp, apperrors.CodeAnalysisError); err != nil {
		return AnalyzeResponse{}, err
	}
	return resp, nil
}

// ChatWithPlant sends one chat turn to the plant persona.
func (c *Client) ChatWithPlant(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, "/api/chat-with-plant", req, &resp, apperrors.CodeChatError); err != nil {
		return ChatResponse{}, err
	}
	return resp, nil
}

// SoilWeather fetches weather data and farming advice. The payload stays
// opaque so the cache layer can store it untouched.
func (c *Client) SoilWeather(ctx context.Context, req SoilWeatherRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.post(ctx, "/api/soil-weather", req, &resp, apperrors.CodeWeatherError); err != nil {
		return nil, err
	}
	return resp, nil
}

// ReportSighting forwards a community pest sighting to the backend. The
// acknowledgement stays opaque; the sync queue records it verbatim.
func (c *Client) ReportSighting(ctx context.Context, req SightingRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.post(ctx, "/api/pest-sightings", req, &resp, apperrors.CodeAnalysisError); err != nil {
		return nil, err
	}
	return resp, nil
}

type errorEnvelope struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	NotSoil bool   `json:"notSoil"`
}

func (c *Client) post(ctx context.Context, path string, payload, out any, failCode string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "request is not serializable", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(failCode, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return apperrors.Wrap(apperrors.CodeNetworkTimeout, "request timed out", err)
		}
		return apperrors.Wrap(apperrors.CodeNetworkUnavailable, "backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		var env errorEnvelope
		_ = json.Unmarshal(raw, &env)
		if isDomainRejection(resp.StatusCode, env) {
			return apperrors.Wrap(apperrors.CodeNotPlantOrSoil, rejectionMessage(env), nil)
		}
		detail := env.Detail
		if detail == "" {
			detail = env.Error
		}
		if detail == "" {
			detail = string(raw)
		}
		return apperrors.Wrap(failCode, fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, detail), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(failCode, "decode response", err)
	}
	return nil
}

// isDomainRejection spots the backend's "this is not a plant/soil photo"
// answer so the UI can show a targeted message instead of a generic error.
func isDomainRejection(status int, env errorEnvelope) bool {
	if status != http.StatusBadRequest {
		return false
	}
	if env.NotSoil || env.Code == "not_plant_or_soil" {
		return true
	}
	marker := strings.ToLower(env.Error + " " + env.Detail)
	return strings.Contains(marker, "not_soil") || strings.Contains(marker, "not_plant")
}

func rejectionMessage(env errorEnvelope) string {
	if env.Message != "" {
		return env.Message
	}
	return "the submitted image does not show a plant or soil"
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
