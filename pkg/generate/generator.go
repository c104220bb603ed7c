// Package generate produces synthetic training images through the OpenAI
// image generation API and saves them as PNG files for later labeling.
package generate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	_ "image/jpeg"
)

// ValidSizes are the image sizes DALL-E 3 accepts.
var ValidSizes = []string{"1024x1024", "1024x1792", "1792x1024"}

// ValidQualities are the quality levels DALL-E 3 accepts.
var ValidQualities = []string{"standard", "hd"}

// Options configures one generation run for a single category.
type Options struct {
	Category string
	Prompt   string
	Count    int
	OutDir   string
	Size     string
	Quality  string
}

// Validate checks the options against the API's supported values.
func (o Options) Validate() error {
	if o.Prompt == "" {
		return fmt.Errorf("no prompt configured for category %q", o.Category)
	}
	if o.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", o.Count)
	}
	if !contains(ValidSizes, o.Size) {
		return fmt.Errorf("invalid size %q, valid sizes: %v", o.Size, ValidSizes)
	}
	if !contains(ValidQualities, o.Quality) {
		return fmt.Errorf("invalid quality %q, valid qualities: %v", o.Quality, ValidQualities)
	}
	return nil
}

// Generator creates images via the OpenAI API and downloads the results.
type Generator struct {
	client     *openai.Client
	downloader *http.Client
	// delay between consecutive API requests
	delay time.Duration
}

// NewGenerator creates a generator authenticated with the given API key.
func NewGenerator(apiKey string) *Generator {
	return &Generator{
		client:     openai.NewClient(apiKey),
		downloader: &http.Client{Timeout: 60 * time.Second},
		delay:      2 * time.Second,
	}
}

// Run generates opts.Count images one at a time (the API only supports n=1
// for DALL-E 3), downloading and saving each. Individual failures are logged
// and skipped; the count of successfully saved images is returned.
func (g *Generator) Run(ctx context.Context, opts Options) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	saved := 0
	for i := 0; i < opts.Count; i++ {
		log.Printf("generating image %d/%d for category %q", i+1, opts.Count, opts.Category)

		imageURL, err := g.Generate(ctx, opts.Prompt, opts.Size, opts.Quality)
		if err != nil {
			log.Printf("generation %d failed: %v", i+1, err)
			continue
		}

		path := filepath.Join(opts.OutDir, Filename(opts.Category, i+1))
		if err := g.DownloadTo(ctx, imageURL, path); err != nil {
			log.Printf("download/save of image %d failed: %v", i+1, err)
			continue
		}
		log.Printf("saved %s", path)
		saved++

		if i < opts.Count-1 {
			time.Sleep(g.delay)
		}
	}
	return saved, nil
}

// Generate requests one image and returns its download URL.
func (g *Generator) Generate(ctx context.Context, prompt, size, quality string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           size,
		Quality:        quality,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("no image URL in API response")
	}
	return resp.Data[0].URL, nil
}

// DownloadTo fetches the generated image and re-encodes it as PNG at path, so
// every output file has a consistent format regardless of what the API
// served.
func (g *Generator) DownloadTo(ctx context.Context, imageURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "yolodata/1.0 (+https://github.com/menta2k/yolodata)")

	resp, err := g.downloader.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image data: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode downloaded image: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// Filename builds a unique output name: <category>_<index>_<shortid>.png.
func Filename(category string, index int) string {
	short := uuid.New().String()[:8]
	return fmt.Sprintf("%s_%03d_%s.png", category, index, short)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
