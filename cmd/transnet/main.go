package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cnclabs/transnet/internal/config"
	"github.com/cnclabs/transnet/internal/models/transnet"
	"github.com/cnclabs/transnet/pkg/logger"
)

func main() {
	logger.Init(false)

	// Flag defaults come from the environment (TRANSNET_*), which in turn
	// falls back to built-in defaults
	cfg := config.LoadEnv()

	train := flag.String("train", "", "Train on labeled social edges")
	test := flag.String("test", "", "Evaluate on held-out labeled edges")
	saveVertex := flag.String("save_vertex", "", "Save vertex embeddings")
	saveTag := flag.String("save_tag", "", "Save tag representations")
	repSize := flag.Int("rep_size", cfg.RepSize, "Dimension of embeddings and label representations")
	margin := flag.Float64("margin", cfg.Margin, "Margin for the translation hinge loss")
	alpha := flag.Float64("alpha", cfg.Alpha, "Weight of the reconstruction loss in the joint objective")
	beta := flag.Float64("beta", cfg.Beta, "Reconstruction weight on present labels")
	lambda := flag.Float64("lambda", cfg.Lambda, "L2 regularization weight")
	keepProb := flag.Float64("keep_prob", cfg.KeepProb, "Dropout keep probability for the hidden representation")
	epochs := flag.Int("epochs", cfg.Epochs, "Number of joint training epochs")
	warmUp := flag.Int("warm_up_epochs", cfg.WarmUpEpochs, "Number of autoencoder pretraining epochs")
	batchSize := flag.Int("batch_size", cfg.BatchSize, "Batch size for training")
	learningRate := flag.Float64("learning_rate", cfg.LearningRate, "Adam learning rate")
	displayStep := flag.Int("display_step", cfg.DisplayStep, "Evaluate every this many joint epochs")
	seed := flag.Int64("seed", cfg.Seed, "Random seed (0 = seed from time)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Println("[TransNet]")
		fmt.Println("\tTranslation-based network representation learning")
		fmt.Println("\tfor social relation extraction")
		fmt.Println()
		fmt.Println("TransNet Principle:")
		fmt.Println("\t✓ Translation mechanism: head + rep(labels) ≈ tail")
		fmt.Println("\t✓ Label sets compressed by a single-layer autoencoder")
		fmt.Println("\t✓ Joint hinge + reconstruction objective, Adam optimizer")
		fmt.Println("\t✓ Warm-up phase pretrains the autoencoder")
		fmt.Println()
		fmt.Println("How it works:")
		fmt.Println("\t1. Each vertex owns a head-role and a tail-role embedding")
		fmt.Println("\t2. Edge label sets are encoded into the relation vector")
		fmt.Println("\t3. Positive edges are ranked against corrupted negatives")
		fmt.Println("\t4. Labels of unseen edges are predicted by the decoder")
		fmt.Println()
		fmt.Println("Input format (labeled edges):")
		fmt.Println("\thead tail tag[,tag...]")
		fmt.Println("\tExample: alice bob colleague,advisor")
		fmt.Println()
		fmt.Println("Key parameters:")
		fmt.Println("\t- rep_size: Embedding dimension (default: 100)")
		fmt.Println("\t- margin: Hinge margin (default: 1.0)")
		fmt.Println("\t- alpha: Reconstruction weight in the joint loss (default: 0.5)")
		fmt.Println("\t- beta: Error weight on present labels (default: 20)")
		fmt.Println("\t  • Compensates for label-vector sparsity")
		fmt.Println("\t- keep_prob: Dropout keep probability (default: 0.5)")
		fmt.Println("\t- warm_up_epochs: Autoencoder pretraining (default: 10)")
		fmt.Println()
		fmt.Println("Options Description:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("./transnet -train train.txt -test test.txt \\")
		fmt.Println("           -save_vertex vertices.txt -save_tag tags.txt \\")
		fmt.Println("           -rep_size 100 -epochs 100 -warm_up_epochs 10 \\")
		fmt.Println("           -batch_size 128 -learning_rate 0.001")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("\t# Quick training with defaults")
		fmt.Println("\t./transnet -train train.txt -test test.txt -save_vertex v.txt -save_tag t.txt")
		fmt.Println()
		fmt.Println("\t# Reproducible run")
		fmt.Println("\t./transnet -train train.txt -test test.txt -save_vertex v.txt -save_tag t.txt -seed 42")
	}

	flag.Parse()

	if *debug {
		logger.Init(true)
	}

	if *train == "" || *saveVertex == "" || *saveTag == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *repSize <= 0 {
		fmt.Println("Error: rep_size must be positive")
		os.Exit(1)
	}
	if *margin <= 0 {
		fmt.Println("Error: margin must be positive")
		os.Exit(1)
	}
	if *beta <= 0 {
		fmt.Println("Error: beta must be positive")
		os.Exit(1)
	}
	if *keepProb <= 0 || *keepProb > 1 {
		fmt.Println("Error: keep_prob must be in (0, 1]")
		os.Exit(1)
	}
	if *epochs <= 0 || *warmUp < 0 {
		fmt.Println("Error: epochs must be positive and warm_up_epochs non-negative")
		os.Exit(1)
	}
	if *batchSize <= 0 {
		fmt.Println("Error: batch_size must be positive")
		os.Exit(1)
	}
	if *learningRate <= 0 {
		fmt.Println("Error: learning_rate must be positive")
		os.Exit(1)
	}

	cfg.RepSize = *repSize
	cfg.Margin = *margin
	cfg.Alpha = *alpha
	cfg.Beta = *beta
	cfg.Lambda = *lambda
	cfg.KeepProb = *keepProb
	cfg.Epochs = *epochs
	cfg.WarmUpEpochs = *warmUp
	cfg.BatchSize = *batchSize
	cfg.LearningRate = *learningRate
	cfg.DisplayStep = *displayStep
	cfg.Seed = *seed

	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  TransNet - Social Relation Extraction by Translation")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()

	startTime := time.Now()

	tn := transnet.New()

	fmt.Println("Loading social network...")
	if err := tn.LoadTrainEdges(*train); err != nil {
		logger.Fatal("loading training edges failed", "error", err)
	}
	if *test != "" {
		if err := tn.LoadTestEdges(*test); err != nil {
			logger.Fatal("loading test edges failed", "error", err)
		}
	}
	if len(tn.Network().TrainEdges) == 0 {
		logger.Fatal("no labeled edges in training file", "file", *train)
	}

	loadTime := time.Since(startTime)
	fmt.Printf("Social network loaded in %.2f seconds\n", loadTime.Seconds())
	fmt.Println()

	tn.Init(cfg)
	fmt.Println()

	trainStartTime := time.Now()
	tn.WarmUp()
	tn.Train()
	trainTime := time.Since(trainStartTime)

	fmt.Println()
	if err := tn.SaveEmbeddings(*saveVertex, *saveTag); err != nil {
		logger.Fatal("saving embeddings failed", "error", err)
	}

	totalTime := time.Since(startTime)
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  Timing Summary")
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Printf("Loading time:     %.2f seconds\n", loadTime.Seconds())
	fmt.Printf("Training time:    %.2f seconds\n", trainTime.Seconds())
	fmt.Printf("Total time:       %.2f seconds\n", totalTime.Seconds())
	fmt.Println()
	fmt.Println("✓ TransNet training complete!")
}
