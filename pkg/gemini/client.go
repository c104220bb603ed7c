// Package gemini implements the detector collaborator on top of the Gemini
// API. Gemini natively reports boxes as [ymin, xmin, ymax, xmax] normalized
// to 0-1000, matching the pipeline's VLM box format.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/menta2k/yolodata/pkg/types"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const promptTemplate = `Detect every instance of the following object classes in the image: %s.

Return JSON only: a list of objects of the form
[{"label": "class name", "box_2d": [ymin, xmin, ymax, xmax]}]
with coordinates normalized to 0-1000. Use only the listed class names.
Return [] if none are present. No markdown, no code fences, no comments.`

// Client is a Gemini-backed object detector.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a detector using the given API key and model name.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Detect sends the image inline with a targeted detection prompt and parses
// the JSON response into detections.
func (c *Client) Detect(ctx context.Context, imagePath string, classes []string) ([]types.Detection, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image dimensions: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate, strings.Join(classes, ", "))
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.ImageData(format, data), genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	detections, err := parseDetections(raw.String())
	if err != nil {
		return nil, err
	}
	for i := range detections {
		detections[i].ImageWidth = cfg.Width
		detections[i].ImageHeight = cfg.Height
	}
	return detections, nil
}

type rawDetection struct {
	Label string `json:"label"`
	Box2D []int  `json:"box_2d"`
}

// parseDetections decodes the model's JSON list, tolerating code fences and
// surrounding prose. Entries without a four-element box are dropped; labels
// are lowercased.
func parseDetections(raw string) ([]types.Detection, error) {
	raw = sanitizeModelJSON(raw)
	if raw == "" {
		return nil, nil
	}

	var entries []rawDetection
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse detection JSON: %w", err)
	}

	var detections []types.Detection
	for _, e := range entries {
		if len(e.Box2D) != 4 {
			continue
		}
		detections = append(detections, types.Detection{
			Label: strings.ToLower(strings.TrimSpace(e.Label)),
			Box: types.VLMBox{
				YMin: e.Box2D[0],
				XMin: e.Box2D[1],
				YMax: e.Box2D[2],
				XMax: e.Box2D[3],
			},
		})
	}
	return detections, nil
}

var reTrailingComma = regexp.MustCompile(`,(\s*[}\]])`)

// sanitizeModelJSON strips code fences and trailing commas and keeps only the
// outermost JSON array.
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "`"))

	raw = reTrailingComma.ReplaceAllString(raw, "$1")

	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			return strings.TrimSpace(raw[start : end+1])
		}
	}
	return ""
}
