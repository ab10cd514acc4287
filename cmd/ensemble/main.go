package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	ensemble "github.com/FrenchMajesty/hierarchical-ensemble"
	"github.com/joho/godotenv"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "file", "", "YAML file describing the ensemble")
	flag.StringVar(&configPath, "f", "", "shorthand for -file")
	train := flag.Bool("train", false, "evaluate on the training set")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ensemble -f ensemble.yaml [-train]")
		fmt.Fprintln(os.Stderr, "  Scores every subset of the configured models and writes the best ensemble report.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if configPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	// .env is optional; the environment may already carry the credentials
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := ensemble.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *train {
		cfg.EvaluateTrainingData = true
	}

	evaluator, err := ensemble.NewEvaluator(*cfg)
	if err != nil {
		log.Fatal(err)
	}

	result, err := evaluator.Run(context.Background())
	if cerr := evaluator.Close(); cerr != nil {
		log.Printf("failed to close prediction source: %v", cerr)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Best ensemble: %s (%.2f%%)\n", result.Search.Best, result.Artifacts.Ensemble.BestEnsembleAcc)
	fmt.Printf("Complete ensemble: %.2f%%\n", result.Artifacts.Ensemble.CompleteEnsembleAcc)
	fmt.Printf("Report: %s\n", result.ReportPath)
}
