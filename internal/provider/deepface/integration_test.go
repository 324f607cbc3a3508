//go:build integration

package deepface

import (
	"context"
	"fmt"
	"image"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/domain"
	"github.com/saturnino-fabrica-de-software/emotion-detection-api/internal/imagecodec"
)

var deepfaceURL string

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "serengil/deepface:latest",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor: wait.ForHTTP("/").
			WithPort("5000/tcp").
			WithStartupTimeout(5 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5000")
	deepfaceURL = fmt.Sprintf("http://%s:%s", host, port.Port())

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate container: %v\n", err)
	}
	os.Exit(code)
}

func TestIntegration_AnalyzeEmotion(t *testing.T) {
	config := DefaultConfig()
	config.BaseURL = deepfaceURL
	// first call downloads the emotion model
	config.Timeout = 3 * time.Minute

	p := NewProvider(config)
	ctx := context.Background()

	require.NoError(t, p.Ping(ctx))

	// A flat gray image has no face; with detection not enforced DeepFace
	// still scores the whole frame.
	img := image.NewNRGBA(image.Rect(0, 0, 224, 224))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
	frame := &imagecodec.Frame{Image: img, Format: "png", Scale: 1}

	analyses, err := p.AnalyzeEmotion(ctx, frame)
	require.NoError(t, err)
	require.NotEmpty(t, analyses)

	assert.NoError(t, analyses[0].Validate())
	assert.Len(t, analyses[0].Emotion, len(domain.Emotions))
}
