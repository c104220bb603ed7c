package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/menta2k/yolodata/internal/config"
	"github.com/menta2k/yolodata/internal/utils"
	"github.com/menta2k/yolodata/pkg/boxconv"
	"github.com/menta2k/yolodata/pkg/client"
	"github.com/menta2k/yolodata/pkg/dataset"
	"github.com/menta2k/yolodata/pkg/gemini"
	"github.com/menta2k/yolodata/pkg/ollama"
	"github.com/menta2k/yolodata/pkg/visualize"
)

func main() {
	var imagePath, backend, model, url, out string

	flag.StringVar(&imagePath, "image", "", "image file to run detection on")
	flag.StringVar(&backend, "backend", "", "detection backend: ollama or gemini (default from config)")
	flag.StringVar(&model, "model", "", "model name (default from config)")
	flag.StringVar(&url, "url", "", "ollama server URL (default from config)")
	flag.StringVar(&out, "out", ".", "directory for the prediction overlay")
	flag.Parse()

	if imagePath == "" {
		log.Fatalf("usage: %s -image photo.jpg [-backend ollama|gemini] [-model name] [-out outdir]",
			filepath.Base(os.Args[0]))
	}

	_ = godotenv.Load()

	cfg := config.Default()
	if backend != "" {
		cfg.Detector.Backend = backend
	}
	if model != "" {
		cfg.Detector.Model = model
	}
	if url != "" {
		cfg.Detector.URL = url
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	catalog, err := dataset.NewCatalog(cfg.Dataset.Classes)
	if err != nil {
		log.Fatal(err)
	}

	var detector client.ObjectDetector
	switch cfg.Detector.Backend {
	case "ollama":
		detector, err = ollama.NewClient(cfg.Detector.URL, cfg.Detector.Model)
		if err != nil {
			log.Fatalf("failed to create ollama client: %v", err)
		}
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			log.Fatal("GEMINI_API_KEY is not set")
		}
		gc, err := gemini.NewClient(context.Background(), apiKey, cfg.Detector.Model)
		if err != nil {
			log.Fatalf("failed to create gemini client: %v", err)
		}
		defer gc.Close()
		detector = gc
	}

	detections, err := detector.Detect(context.Background(), imagePath, catalog.Names())
	if err != nil {
		log.Fatal(err)
	}

	if len(detections) == 0 {
		fmt.Println("no objects detected")
		return
	}

	var labels []visualize.Label
	for _, det := range detections {
		pixel, ok := boxconv.PixelFromVLM(det.Box, det.ImageWidth, det.ImageHeight)
		if !ok {
			continue
		}
		fmt.Printf("%-12s (%d,%d)-(%d,%d)\n", det.Label, pixel.XMin, pixel.YMin, pixel.XMax, pixel.YMax)

		id, known := catalog.ID(det.Label)
		if !known {
			continue
		}
		yolo, ok := boxconv.YoloFromVLM(det.Box, det.ImageWidth, det.ImageHeight)
		if !ok {
			continue
		}
		labels = append(labels, visualize.Label{ClassID: id, Box: yolo})
	}

	img, err := visualize.LoadImage(imagePath)
	if err != nil {
		log.Fatal(err)
	}
	if err := utils.EnsureDir(out); err != nil {
		log.Fatal(err)
	}

	annotated := visualize.Render(img, labels, catalog.Names())
	outPath := filepath.Join(out, utils.Stem(imagePath)+"_prediction.png")
	if err := visualize.SaveImage(annotated, outPath, "png", 0, false); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", outPath)
}
