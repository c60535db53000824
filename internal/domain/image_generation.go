package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Args is the JSON object the host passes to the tool in TELLAR_ARGS
type Args struct {
	Prompt string `json:"prompt"`
}

// ParseArgs decodes the raw TELLAR_ARGS value. A blank value is treated as an
// empty object; a JSON null is rejected. A null prompt reads as no prompt.
func ParseArgs(raw string) (Args, error) {
	if strings.TrimSpace(raw) == "" {
		return Args{}, nil
	}
	var args *Args
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return Args{}, fmt.Errorf("failed to parse arguments: %w", err)
	}
	if args == nil {
		return Args{}, errors.New("failed to parse arguments: expected a JSON object, got null")
	}
	return *args, nil
}

// ImageGenerationRequest represents the parameters for image generation
type ImageGenerationRequest struct {
	Prompt string
	Model  string
}

// Prediction is a single generated output of the predict endpoint
type Prediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType,omitempty"`
	RAIFilteredReason  string `json:"raiFilteredReason,omitempty"`
}

// ImageGenerationResponse represents the response from the image generation service
type ImageGenerationResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// ImageGenerator defines the interface for image generation backends
type ImageGenerator interface {
	// Predict sends the prompt to the backend and returns its raw predictions
	Predict(ctx context.Context, req ImageGenerationRequest) (*ImageGenerationResponse, error)
}
