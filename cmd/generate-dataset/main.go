package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/menta2k/yolodata"
	"github.com/menta2k/yolodata/internal/config"
	"github.com/menta2k/yolodata/pkg/client"
	"github.com/menta2k/yolodata/pkg/dataset"
	"github.com/menta2k/yolodata/pkg/gemini"
	"github.com/menta2k/yolodata/pkg/ollama"
)

// pairList collects repeated -require-both flags of the form
// "dir,classA,classB".
type pairList []dataset.RequiredPairSpec

func (p *pairList) String() string {
	var parts []string
	for _, spec := range *p {
		parts = append(parts, fmt.Sprintf("%s,%s,%s", spec.Group, spec.ClassA, spec.ClassB))
	}
	return strings.Join(parts, " ")
}

func (p *pairList) Set(value string) error {
	fields := strings.Split(value, ",")
	if len(fields) != 3 {
		return fmt.Errorf("expected dir,classA,classB, got %q", value)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
		if fields[i] == "" {
			return fmt.Errorf("empty field in %q", value)
		}
	}
	*p = append(*p, dataset.RequiredPairSpec{Group: fields[0], ClassA: fields[1], ClassB: fields[2]})
	return nil
}

func main() {
	var inputDirs, out, backend, model, url, configPath string
	var seed int64
	var pairs pairList

	flag.StringVar(&inputDirs, "input-dirs", "", "comma-separated source image directories (one stratification group each)")
	flag.StringVar(&out, "out", "dataset", "output dataset directory")
	flag.Var(&pairs, "require-both", "dir,classA,classB: images in dir must contain both classes (repeatable)")
	flag.StringVar(&backend, "backend", "", "detection backend: ollama or gemini (default from config)")
	flag.StringVar(&model, "model", "", "model name (default from config)")
	flag.StringVar(&url, "url", "", "ollama server URL (default from config)")
	flag.StringVar(&configPath, "config", "", "TOML config file (optional)")
	flag.Int64Var(&seed, "seed", 0, "random seed for the split shuffle (0 = time-based)")
	flag.Parse()

	if inputDirs == "" {
		log.Fatalf("usage: %s -input-dirs raw/helmet,raw/glove [-out dataset] [-require-both dir,classA,classB] [-backend ollama|gemini] [-model name] [-seed 42]",
			filepath.Base(os.Args[0]))
	}

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
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

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("backend=%s model=%s seed=%d", cfg.Detector.Backend, cfg.Detector.Model, seed)

	pipeline := yolodata.Pipeline{
		InputDirs:     strings.Split(inputDirs, ","),
		OutputRoot:    out,
		Catalog:       catalog,
		Detector:      detector,
		RequiredPairs: pairs,
		Ratios:        dataset.SplitRatios{Train: cfg.Dataset.TrainRatio, Val: cfg.Dataset.ValRatio},
		Rand:          rand.New(rand.NewSource(seed)),
	}

	tally, err := pipeline.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("done: %d labeled, %d copied, %d skipped, %d errors",
		tally.Processed, tally.Copied, tally.Skipped, tally.Errors)
	if tally.NoTargetWarnings > 0 {
		log.Printf("%d image(s) produced no target objects", tally.NoTargetWarnings)
	}
	if tally.RequiredMissingWarnings > 0 {
		log.Printf("%d image(s) were missing a required object", tally.RequiredMissingWarnings)
	}
	if tally.Errors > 0 {
		os.Exit(1)
	}
}
