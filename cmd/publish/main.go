package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/FrenchMajesty/hierarchical-ensemble/adapters"
	"github.com/FrenchMajesty/hierarchical-ensemble/dataset"
	"github.com/joho/godotenv"
)

func main() {
	model := flag.String("model", "", "model name the predictions are stored under")
	file := flag.String("file", "", ".npy prediction matrix, one row per sample")
	dataDir := flag.String("data", "", "CIFAR-100 binary directory providing the sample labels")
	labelMode := flag.String("label-mode", "fine", "label mode (fine/coarse)")
	useTrain := flag.Bool("train", false, "predictions are for train.bin instead of test.bin")
	namespace := flag.String("namespace", "predictions", "Pinecone namespace")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: publish -model NAME -file PRED.npy -data DIR [flags]")
		fmt.Fprintln(os.Stderr, "  Uploads a model's predictions to Pinecone for use as a prediction source.")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *model == "" || *file == "" || *dataDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	data, err := dataset.NewCIFAR100(*dataDir, dataset.LabelMode(*labelMode)).Load()
	if err != nil {
		log.Fatal(err)
	}
	split := data.Test
	if *useTrain {
		split = data.Train
	}

	pred, err := adapters.ReadMatrix(*file)
	if err != nil {
		log.Fatal(err)
	}

	source, err := adapters.NewPineconePredictionSource(nil, nil, *namespace)
	if err != nil {
		log.Fatal(err)
	}

	err = source.Publish(context.Background(), *model, pred, split.Labels)
	if cerr := source.Close(); cerr != nil {
		log.Printf("failed to close pinecone connection: %v", cerr)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Published %d predictions of %s to namespace %s", split.Len(), *model, *namespace)
}
