package services

import (
	"github.com/Conceptual-Machines/albumatlas/internal/config"
)

// Sampling defaults; every recommendation uses the same values
const (
	defaultTemperature      = 0.5
	defaultFrequencyPenalty = 0.5
	defaultPresencePenalty  = 0.5
)

// GenerationParams contains the model and sampling settings sent with each generation call
type GenerationParams struct {
	Model            string // empty selects the provider default
	Temperature      float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// DefaultGenerationParams returns the fixed sampling parameters
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:      defaultTemperature,
		FrequencyPenalty: defaultFrequencyPenalty,
		PresencePenalty:  defaultPresencePenalty,
	}
}

// GenerationParamsFromConfig applies configured overrides to the defaults
func GenerationParamsFromConfig(cfg *config.Config) GenerationParams {
	params := DefaultGenerationParams()
	params.Model = cfg.GenerationModel
	params.Temperature = cfg.Temperature
	params.FrequencyPenalty = cfg.FrequencyPenalty
	params.PresencePenalty = cfg.PresencePenalty
	return params
}
