package agroapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

func TestAnalyzeHealthDecodesDiagnosis(t *testing.T) {
	var gotPath string
	var gotBody AnalyzeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"plant_type": "Tomato",
			"health_status": "moderate",
			"diseases": [{"name": "Early Blight", "confidence": 82, "severity": "medium", "description": "Fungal infection"}],
			"recommendations": ["Remove affected leaves"],
			"confidence": 87,
			"summary": "Moderate stress detected."
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{
		ImageBase64: "aGVsbG8=",
		PlantType:   "tomato",
		Language:    "en",
	})
	require.NoError(t, err)

	require.Equal(t, "/api/analyze-health", gotPath)
	require.Equal(t, "tomato", gotBody.PlantType)
	require.Equal(t, "Tomato", resp.PlantType)
	require.Equal(t, "moderate", resp.HealthStatus)
	require.Len(t, resp.Diseases, 1)
	require.Equal(t, "Early Blight", resp.Diseases[0].Name)
	require.InDelta(t, 87, resp.Confidence, 1e-9)
}

func TestAnalyzeHealthMapsNotSoilRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"notSoil": true, "message": "Please upload a plant or soil photo"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{ImageBase64: "aGVsbG8="})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotPlantOrSoil))
	require.Contains(t, err.Error(), "plant or soil")
}

func TestAnalyzeHealthMapsMarkerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "image classified as not_plant"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{ImageBase64: "aGVsbG8="})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotPlantOrSoil))
}

func TestAnalyzeHealthMapsBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "model crashed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{ImageBase64: "aGVsbG8="})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAnalysisError))
}

func TestRequestTimeoutIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, 20*time.Millisecond)
	_, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{ImageBase64: "aGVsbG8="})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNetworkTimeout))
}

func TestUnreachableBackendIsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.AnalyzeHealth(context.Background(), AnalyzeRequest{ImageBase64: "aGVsbG8="})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNetworkUnavailable))
}

func TestChatWithPlantDecodesReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat-with-plant", r.URL.Path)
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "How are you?", req.Message)
		_, _ = w.Write([]byte(`{"response": "I am thirsty!", "emotion": "sad", "tip": "Water me in the morning."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	resp, err := client.ChatWithPlant(context.Background(), ChatRequest{Message: "How are you?", Language: "en"})
	require.NoError(t, err)
	require.Equal(t, "I am thirsty!", resp.Response)
	require.Equal(t, "sad", resp.Emotion)
}

func TestSoilWeatherReturnsOpaquePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/soil-weather", r.URL.Path)
		_, _ = w.Write([]byte(`{"weather": {"temperature": 31.5, "humidity": 62}, "advice": ["Irrigate at dusk"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	payload, err := client.SoilWeather(context.Background(), SoilWeatherRequest{Latitude: 17.38, Longitude: 78.49})
	require.NoError(t, err)
	require.JSONEq(t, `{"weather": {"temperature": 31.5, "humidity": 62}, "advice": ["Irrigate at dusk"]}`, string(payload))
}

func TestReportSightingPostsToSightingsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pest-sightings", r.URL.Path)
		var req SightingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "aphids", req.Pest)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"accepted": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	ack, err := client.ReportSighting(context.Background(), SightingRequest{Pest: "aphids", Severity: "medium"})
	require.NoError(t, err)
	require.JSONEq(t, `{"accepted": true}`, string(ack))
}
