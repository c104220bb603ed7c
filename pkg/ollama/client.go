// Package ollama implements the detector collaborator on top of a local
// Ollama server running a PaliGemma-style vision-language model.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/menta2k/yolodata/pkg/types"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// locPattern matches PaliGemma detection segments: four <locNNNN> tokens in
// ymin/xmin/ymax/xmax order followed by the label. Labels may contain spaces
// and hyphens.
var locPattern = regexp.MustCompile(`<loc(\d+)><loc(\d+)><loc(\d+)><loc(\d+)>\s*([\w\s-]+)`)

// Client is an Ollama-backed object detector.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a detector talking to the Ollama server at ollamaURL
// (any path component is ignored) using the given model.
func NewClient(ollamaURL, model string) (*Client, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	baseURL := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Client{
		client: api.NewClient(baseURL, http.DefaultClient),
		model:  model,
	}, nil
}

// Detect sends the image with a targeted "detect a ; b" prompt and parses the
// model's location-token output into detections. Coordinates are the model's
// 0-1000 normalized corners, y before x.
func (c *Client) Detect(ctx context.Context, imagePath string, classes []string) ([]types.Detection, error) {
	// Vision models on CPU can be slow; cap the call if the caller didn't.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image dimensions: %w", err)
	}

	prompt := "detect " + strings.Join(classes, " ; ")
	streamFalse := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: prompt,
				Images:  []api.ImageData{api.ImageData(data)},
			},
		},
		Stream: &streamFalse,
	}

	var response string
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}

	detections := parseDetections(response)
	for i := range detections {
		detections[i].ImageWidth = cfg.Width
		detections[i].ImageHeight = cfg.Height
	}
	return detections, nil
}

// parseDetections extracts all detections from the raw model output. Multiple
// detections are separated by ';'; segments without a valid location quad are
// skipped. Labels are lowercased.
func parseDetections(raw string) []types.Detection {
	var detections []types.Detection

	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		m := locPattern.FindStringSubmatch(segment)
		if m == nil {
			continue
		}

		coords := make([]int, 4)
		valid := true
		for i := 0; i < 4; i++ {
			v, err := strconv.Atoi(m[i+1])
			if err != nil {
				valid = false
				break
			}
			coords[i] = v
		}
		if !valid {
			continue
		}

		detections = append(detections, types.Detection{
			Label: strings.ToLower(strings.TrimSpace(m[5])),
			Box: types.VLMBox{
				YMin: coords[0],
				XMin: coords[1],
				YMax: coords[2],
				XMax: coords[3],
			},
		})
	}

	return detections
}
