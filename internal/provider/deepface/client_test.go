package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func happyResult() AnalyzeResult {
	return AnalyzeResult{
		Region: FacialArea{X: 10, Y: 20, W: 100, H: 100},
		Emotion: map[string]float64{
			"angry": 1, "disgust": 0.5, "fear": 1.5, "happy": 90,
			"sad": 2, "surprise": 3, "neutral": 2,
		},
		DominantEmotion: "happy",
		FaceConfidence:  0.93,
	}
}

func TestClient_AnalyzeEmotion(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        bool
		wantErrContain string
		validateResp   func(*testing.T, *AnalyzeResponse)
	}{
		{
			name:           "successful response with single face",
			serverResponse: AnalyzeResponse{Results: []AnalyzeResult{happyResult()}},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *AnalyzeResponse) {
				require.NotNil(t, resp)
				require.Len(t, resp.Results, 1)
				assert.Equal(t, "happy", resp.Results[0].DominantEmotion)
				assert.Equal(t, 10, resp.Results[0].Region.X)
				assert.Equal(t, 100, resp.Results[0].Region.W)
				assert.InDelta(t, 90.0, resp.Results[0].Emotion["happy"], 1e-9)
			},
		},
		{
			name:           "successful response with multiple faces",
			serverResponse: AnalyzeResponse{Results: []AnalyzeResult{happyResult(), happyResult()}},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *AnalyzeResponse) {
				assert.Len(t, resp.Results, 2)
			},
		},
		{
			name: "results as a single object",
			serverResponse: map[string]interface{}{
				"results": happyResult(),
			},
			serverStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *AnalyzeResponse) {
				require.Len(t, resp.Results, 1)
				assert.Equal(t, "happy", resp.Results[0].DominantEmotion)
			},
		},
		{
			name:           "empty response",
			serverResponse: AnalyzeResponse{Results: []AnalyzeResult{}},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *AnalyzeResponse) {
				assert.Len(t, resp.Results, 0)
			},
		},
		{
			name:           "server error 500",
			serverResponse: map[string]string{"error": "internal server error"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        true,
			wantErrContain: "status 500",
		},
		{
			name:           "bad request 400",
			serverResponse: map[string]string{"error": "invalid image format"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        true,
			wantErrContain: "status 400",
		},
		{
			name:           "invalid json response",
			serverResponse: "not a valid json",
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrContain: "invalid response",
		},
		{
			name:           "results of the wrong type",
			serverResponse: map[string]interface{}{"results": 42},
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrContain: "invalid response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/analyze", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req AnalyzeRequest
				err := json.NewDecoder(r.Body).Decode(&req)
				require.NoError(t, err)

				assert.NotEmpty(t, req.Img)
				assert.Equal(t, []string{"emotion"}, req.Actions)
				assert.False(t, req.EnforceDetection)
				assert.True(t, req.Silent)
				assert.Equal(t, "opencv", req.DetectorBackend)

				w.WriteHeader(tt.serverStatus)
				if str, ok := tt.serverResponse.(string); ok {
					_, _ = w.Write([]byte(str))
				} else {
					_ = json.NewEncoder(w).Encode(tt.serverResponse)
				}
			}))
			defer server.Close()

			config := DefaultConfig()
			config.BaseURL = server.URL

			client := NewClient(config)
			resp, err := client.AnalyzeEmotion(context.Background(), "data:image/jpeg;base64,dGVzdA==")

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrContain != "" {
					assert.Contains(t, err.Error(), tt.wantErrContain)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateResp != nil {
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_EnforceDetectionIsSerialized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		// the field must be sent explicitly, DeepFace defaults it to true
		value, ok := raw["enforce_detection"]
		assert.True(t, ok, "enforce_detection must be present")
		assert.Equal(t, false, value)

		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Results: []AnalyzeResult{happyResult()}})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	_, err := NewClient(config).AnalyzeEmotion(context.Background(), "data:image/jpeg;base64,dGVzdA==")
	require.NoError(t, err)
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	_, err := NewClient(config).AnalyzeEmotion(context.Background(), "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_RetryOnFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "service unavailable"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{Results: []AnalyzeResult{}})
	}))
	defer server.Close()

	config := Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Detector:   "opencv",
		RetryCount: 2,
	}

	resp, err := NewClient(config).AnalyzeEmotion(context.Background(), "x")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
	}))
	defer server.Close()

	config := Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Detector:   "opencv",
		RetryCount: 3,
	}

	_, err := NewClient(config).AnalyzeEmotion(context.Background(), "x")

	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(config).AnalyzeEmotion(ctx, "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond

	_, err := NewClient(config).AnalyzeEmotion(context.Background(), "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Client.Timeout exceeded")
}

func TestClient_Ping(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte("<h1>Welcome to DeepFace API!</h1>"))
		}))
		defer server.Close()

		config := DefaultConfig()
		config.BaseURL = server.URL

		assert.NoError(t, NewClient(config).Ping(context.Background()))
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		config := DefaultConfig()
		config.BaseURL = server.URL

		assert.ErrorIs(t, NewClient(config).Ping(context.Background()), ErrDeepFaceUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		config := DefaultConfig()
		config.BaseURL = url

		assert.ErrorIs(t, NewClient(config).Ping(context.Background()), ErrDeepFaceUnavailable)
	})
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0))
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, 4*time.Second, calculateBackoff(3))
	assert.Equal(t, maxBackoff, calculateBackoff(10))
}

func TestNewClient(t *testing.T) {
	config := Config{
		BaseURL:    "http://localhost:5005",
		Timeout:    10 * time.Second,
		Detector:   "retinaface",
		RetryCount: 1,
	}

	client := NewClient(config)

	require.NotNil(t, client)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, config, client.config)
	assert.Equal(t, config.Timeout, client.httpClient.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:5005", config.BaseURL)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, "opencv", config.Detector)
	assert.Equal(t, 0, config.RetryCount)
}
