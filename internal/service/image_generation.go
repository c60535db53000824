package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/basel-ax/draw/internal/config"
	"github.com/basel-ax/draw/internal/domain"
	"github.com/basel-ax/draw/internal/infrastructure/imagen"
	"github.com/basel-ax/draw/internal/repository"
	"github.com/samber/lo"
)

const logPromptLength = 80

// ImageGenerationService turns a prompt into a saved image
type ImageGenerationService struct {
	client domain.ImageGenerator
	store  repository.AttachmentStore
	images repository.ImageRepository
	config *config.Config
	now    func() time.Time
}

// NewImageGenerationService creates a new image generation service. images may
// be nil when the ledger is disabled.
func NewImageGenerationService(cfg *config.Config, images repository.ImageRepository) *ImageGenerationService {
	return &ImageGenerationService{
		client: imagen.NewClient(cfg.GeminiAPIKey,
			imagen.WithBaseURL(cfg.BaseURL),
			imagen.WithTimeout(cfg.HTTPTimeout),
		),
		store:  repository.NewFileAttachmentStore(cfg.AttachmentsDir),
		images: images,
		config: cfg,
		now:    time.Now,
	}
}

// UseLedger sets the repository that records saved images. A nil repository
// disables recording.
func (s *ImageGenerationService) UseLedger(images repository.ImageRepository) {
	s.images = images
}

// Validate checks the credential and then the prompt without touching the
// network or the filesystem
func (s *ImageGenerationService) Validate(req domain.ImageGenerationRequest) error {
	if s.config.GeminiAPIKey == "" {
		return domain.ErrMissingCredential
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.ErrMissingPrompt
	}
	return nil
}

// GenerateImage validates the request, calls the backend, decodes the first
// prediction and writes it to the attachments directory
func (s *ImageGenerationService) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.GeneratedImage, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	if req.Model == "" {
		req.Model = s.config.Model
	}

	slog.DebugContext(ctx, "requesting image", "model", req.Model, "prompt", lo.Ellipsis(req.Prompt, logPromptLength))

	resp, err := s.client.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	data, err := decodeFirstPrediction(resp)
	if err != nil {
		return nil, err
	}

	attachment, err := s.store.Save(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	sum := sha256.Sum256(data)
	img := &domain.GeneratedImage{
		UUID:      attachment.UUID,
		Prompt:    req.Prompt,
		Model:     req.Model,
		Path:      filepath.ToSlash(attachment.Path),
		Size:      len(data),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: s.now().UTC(),
	}

	slog.InfoContext(ctx, "image saved", "path", img.Path, "bytes", img.Size, "sha256", img.SHA256)

	if s.images != nil {
		if err := s.images.Record(ctx, img); err != nil {
			slog.WarnContext(ctx, "failed to record image in ledger", "uuid", img.UUID, "error", err)
		}
	}

	return img, nil
}

func decodeFirstPrediction(resp *domain.ImageGenerationResponse) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("no predictions returned")
	}
	first, ok := lo.First(resp.Predictions)
	if !ok {
		return nil, errors.New("no predictions returned")
	}

	if first.BytesBase64Encoded == "" {
		if first.RAIFilteredReason != "" {
			return nil, fmt.Errorf("image filtered: %s", first.RAIFilteredReason)
		}
		return nil, errors.New("prediction has no bytesBase64Encoded")
	}

	data, err := base64.StdEncoding.DecodeString(first.BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}
