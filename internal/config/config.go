package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/cnclabs/transnet/pkg/logger"
)

// Config holds the TransNet hyperparameters. Values come from built-in
// defaults, overridden by TRANSNET_* environment variables, overridden by
// command-line flags.
type Config struct {
	RepSize      int // embedding dimension
	Epochs       int // joint training epochs
	WarmUpEpochs int // autoencoder pretraining epochs
	BatchSize    int
	LearningRate float64
	Alpha        float64 // weight of the reconstruction loss in the joint objective
	Beta         float64 // reconstruction weight on present labels
	Lambda       float64 // L2 regularization weight
	Margin       float64 // hinge margin
	KeepProb     float64 // dropout keep probability
	DisplayStep  int     // evaluate every this many joint epochs
	Seed         int64   // 0 = seed from time
}

// LoadEnv loads a .env file if one exists, then returns the configuration
// with environment overrides applied.
func LoadEnv() Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using system environment")
	}

	return Config{
		RepSize:      getEnvInt("TRANSNET_REP_SIZE", 100),
		Epochs:       getEnvInt("TRANSNET_EPOCHS", 100),
		WarmUpEpochs: getEnvInt("TRANSNET_WARM_UP_EPOCHS", 10),
		BatchSize:    getEnvInt("TRANSNET_BATCH_SIZE", 128),
		LearningRate: getEnvFloat("TRANSNET_LEARNING_RATE", 0.001),
		Alpha:        getEnvFloat("TRANSNET_ALPHA", 0.5),
		Beta:         getEnvFloat("TRANSNET_BETA", 20.0),
		Lambda:       getEnvFloat("TRANSNET_LAMBDA", 0.001),
		Margin:       getEnvFloat("TRANSNET_MARGIN", 1.0),
		KeepProb:     getEnvFloat("TRANSNET_KEEP_PROB", 0.5),
		DisplayStep:  getEnvInt("TRANSNET_DISPLAY_STEP", 10),
		Seed:         int64(getEnvInt("TRANSNET_SEED", 0)),
	}
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logger.Warn("ignoring malformed environment variable", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("ignoring malformed environment variable", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}
