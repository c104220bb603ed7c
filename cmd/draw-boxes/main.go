package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/menta2k/yolodata/internal/utils"
	"github.com/menta2k/yolodata/pkg/dataset"
	"github.com/menta2k/yolodata/pkg/types"
	"github.com/menta2k/yolodata/pkg/visualize"
)

func main() {
	var datasetDir, out string

	flag.StringVar(&datasetDir, "dataset-dir", "", "dataset root containing data.yaml")
	flag.StringVar(&out, "out", "visualized", "output directory for annotated images")
	flag.Parse()

	if datasetDir == "" {
		log.Fatalf("usage: %s -dataset-dir dataset [-out visualized]", filepath.Base(os.Args[0]))
	}

	manifest, err := dataset.LoadManifest(datasetDir)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("dataset has %d classes: %v", manifest.NC, manifest.Names)

	var rendered, skipped, errors int
	for _, split := range types.Splits {
		imgDir := filepath.Join(datasetDir, "images", string(split))
		lblDir := filepath.Join(datasetDir, "labels", string(split))
		outDir := filepath.Join(out, string(split))

		if !utils.DirExists(imgDir) {
			continue
		}
		if err := utils.EnsureDir(outDir); err != nil {
			log.Fatal(err)
		}

		images, err := utils.ListImages(imgDir)
		if err != nil {
			log.Fatalf("failed to scan %s: %v", imgDir, err)
		}

		for _, imgPath := range images {
			stem := utils.Stem(imgPath)
			outPath := filepath.Join(outDir, stem+"_boxes.png")
			if utils.FileExists(outPath) {
				skipped++
				continue
			}

			labels, err := visualize.LoadLabels(filepath.Join(lblDir, stem+".txt"))
			if err != nil {
				log.Printf("error reading labels for %s: %v", filepath.Base(imgPath), err)
				errors++
				continue
			}

			img, err := visualize.LoadImage(imgPath)
			if err != nil {
				log.Printf("error loading %s: %v", filepath.Base(imgPath), err)
				errors++
				continue
			}

			annotated := visualize.Render(img, labels, manifest.Names)
			if err := visualize.SaveImage(annotated, outPath, "png", 0, false); err != nil {
				log.Printf("error saving %s: %v", outPath, err)
				errors++
				continue
			}
			rendered++
		}
	}

	log.Printf("done: %d rendered, %d skipped (already present), %d errors", rendered, skipped, errors)
	if errors > 0 {
		os.Exit(1)
	}
}
