package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/menta2k/yolodata/internal/config"
	"github.com/menta2k/yolodata/pkg/generate"
)

func main() {
	var category, out, size, quality, configPath string
	var count int

	flag.StringVar(&category, "category", "", "category to generate (must have a prompt in the config)")
	flag.IntVar(&count, "n", 1, "number of images to generate")
	flag.StringVar(&out, "out", "generated", "output directory")
	flag.StringVar(&size, "size", "", "image size (default from config)")
	flag.StringVar(&quality, "quality", "", "image quality: standard or hd (default from config)")
	flag.StringVar(&configPath, "config", "", "TOML config file (optional)")
	flag.Parse()

	if category == "" {
		log.Fatalf("usage: %s -category flip-flops [-n 10] [-out generated] [-size 1024x1024] [-quality standard]",
			filepath.Base(os.Args[0]))
	}

	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if size == "" {
		size = cfg.Generation.Size
	}
	if quality == "" {
		quality = cfg.Generation.Quality
	}

	opts := generate.Options{
		Category: category,
		Prompt:   cfg.Generation.Prompts[category],
		Count:    count,
		OutDir:   out,
		Size:     size,
		Quality:  quality,
	}

	generator := generate.NewGenerator(apiKey)
	saved, err := generator.Run(context.Background(), opts)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("saved %d/%d images to %s", saved, count, out)
	if saved < count {
		os.Exit(1)
	}
}
