package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"creationhub/internal/domain"
	"creationhub/internal/infra"
	"creationhub/internal/providers/image"
	"creationhub/internal/queue"
	"creationhub/internal/settings"
	"creationhub/internal/statuscache"
)

// ImageProvider is the vendor surface the service generates against.
type ImageProvider interface {
	Generate(ctx context.Context, prompt string, opts domain.ImageOptions) (*image.Result, error)
	Edit(ctx context.Context, imageData []byte, filename, prompt string, opts domain.ImageOptions) (*image.Result, error)
}

// Deps lists everything the service needs. All collaborators are passed
// in explicitly; the service owns no globals.
type Deps struct {
	Images       domain.ImageRepository
	Analytics    domain.AnalyticsRepository
	Provider     ImageProvider
	Producer     queue.Producer
	PersistTopic string
	Settings     *settings.Store
	StatusCache  *statuscache.StatusCache
	Logger       *infra.Logger
}

// Service orchestrates image generation, editing, and the gallery.
type Service struct {
	images       domain.ImageRepository
	analytics    domain.AnalyticsRepository
	provider     ImageProvider
	producer     queue.Producer
	persistTopic string
	settings     *settings.Store
	statusCache  *statuscache.StatusCache
	logger       *infra.Logger
}

func NewService(deps Deps) (*Service, error) {
	if deps.Images == nil {
		return nil, errors.New("hub: image repository is required")
	}
	if deps.Provider == nil {
		return nil, errors.New("hub: image provider is required")
	}
	if deps.Settings == nil {
		return nil, errors.New("hub: settings store is required")
	}
	return &Service{
		images:       deps.Images,
		analytics:    deps.Analytics,
		provider:     deps.Provider,
		producer:     deps.Producer,
		persistTopic: deps.PersistTopic,
		settings:     deps.Settings,
		statusCache:  deps.StatusCache,
		logger:       deps.Logger,
	}, nil
}

// GenerateParams is one image generation request.
type GenerateParams struct {
	UserID         string
	Prompt         string
	Options        domain.ImageOptions
	Style          string
	ConversationID string
	Filters        []string
	CountryCode    string
}

// EditParams is one image edit request.
type EditParams struct {
	GenerateParams
	ImageData     []byte
	Filename      string
	ParentImageID string
}

// GenerateImage validates the request, calls the vendor, and either
// persists the gallery row inline or hands it to the worker queue when
// auto-save is on.
func (s *Service) GenerateImage(ctx context.Context, params GenerateParams) (*domain.GeneratedImage, error) {
	opts := s.applyDefaults(params.Options)
	if err := domain.ValidatePrompt(params.Prompt); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageGenerate, false, params.CountryCode)
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageGenerate, false, params.CountryCode)
		return nil, err
	}

	res, err := s.provider.Generate(ctx, params.Prompt, opts)
	if err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageGenerate, false, params.CountryCode)
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	img := s.buildRecord(params, opts, res, "")
	if err := s.persist(ctx, img, params.Filters); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageGenerate, false, params.CountryCode)
		return nil, err
	}
	s.recordUsage(params.UserID, domain.UsageKindImageGenerate, true, params.CountryCode)
	return img, nil
}

// EditImage runs the vendor edit endpoint against an uploaded image and
// persists the result linked to its parent.
func (s *Service) EditImage(ctx context.Context, params EditParams) (*domain.GeneratedImage, error) {
	opts := s.applyDefaults(params.Options)
	if len(params.ImageData) == 0 {
		return nil, fmt.Errorf("%w: source image required", domain.ErrInvalidOption)
	}
	if err := domain.ValidatePrompt(params.Prompt); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageEdit, false, params.CountryCode)
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageEdit, false, params.CountryCode)
		return nil, err
	}

	res, err := s.provider.Edit(ctx, params.ImageData, params.Filename, params.Prompt, opts)
	if err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageEdit, false, params.CountryCode)
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	img := s.buildRecord(params.GenerateParams, opts, res, params.ParentImageID)
	if err := s.persist(ctx, img, params.Filters); err != nil {
		s.recordUsage(params.UserID, domain.UsageKindImageEdit, false, params.CountryCode)
		return nil, err
	}
	s.recordUsage(params.UserID, domain.UsageKindImageEdit, true, params.CountryCode)
	return img, nil
}

// ListImages returns the caller's gallery, newest first. A zero limit
// falls back to the configured history limit.
func (s *Service) ListImages(ctx context.Context, filter domain.ImageFilter) ([]domain.GeneratedImage, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.settings.Get().HistoryLimit
	}
	return s.images.List(ctx, filter)
}

// GetImage fetches one gallery entry, refusing access across users.
func (s *Service) GetImage(ctx context.Context, id, userID string) (*domain.GeneratedImage, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return img, nil
}

// DeleteImage removes a gallery entry and its cached status.
func (s *Service) DeleteImage(ctx context.Context, id, userID string) error {
	if err := s.images.Delete(ctx, id, userID); err != nil {
		return err
	}
	if s.statusCache != nil {
		if err := s.statusCache.Delete(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("image_id", id).Msg("drop status snapshot")
		}
	}
	return nil
}

// Settings returns the current hub settings.
func (s *Service) Settings() domain.HubSettings {
	return s.settings.Get()
}

// UpdateSettings persists new hub settings.
func (s *Service) UpdateSettings(next domain.HubSettings) (domain.HubSettings, error) {
	return s.settings.Update(next)
}

// Close releases the queue producer.
func (s *Service) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}

func (s *Service) applyDefaults(opts domain.ImageOptions) domain.ImageOptions {
	def := s.settings.Get()
	if opts.Quality == "" {
		opts.Quality = def.DefaultQuality
	}
	if opts.Size == "" {
		opts.Size = def.DefaultSize
	}
	if opts.Format == "" {
		opts.Format = def.DefaultFormat
	}
	if opts.Background == "" {
		opts.Background = def.DefaultBackground
	}
	if opts.Compression == 0 {
		opts.Compression = def.DefaultCompression
	}
	return opts
}

func (s *Service) buildRecord(params GenerateParams, opts domain.ImageOptions, res *image.Result, parentID string) *domain.GeneratedImage {
	now := time.Now().UTC()
	return &domain.GeneratedImage{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Prompt:         params.Prompt,
		RevisedPrompt:  res.RevisedPrompt,
		ImageURL:       res.ImageURL,
		Quality:        opts.Quality,
		Size:           opts.Size,
		Style:          params.Style,
		Model:          "gpt-image-1",
		Status:         domain.JobStatusCompleted,
		ConversationID: params.ConversationID,
		ParentImageID:  parentID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// persist either enqueues the worker task (auto-save on) or writes the
// row inline. Queue failures degrade to the inline path so a broker
// outage never loses a paid generation.
func (s *Service) persist(ctx context.Context, img *domain.GeneratedImage, filters []string) error {
	if s.settings.Get().AutoSave && s.producer != nil {
		task := &queue.PersistTask{
			ImageID:        img.ID,
			UserID:         img.UserID,
			Prompt:         img.Prompt,
			RevisedPrompt:  img.RevisedPrompt,
			SourceURL:      img.ImageURL,
			Quality:        img.Quality,
			Size:           img.Size,
			Model:          img.Model,
			ConversationID: img.ConversationID,
			ParentImageID:  img.ParentImageID,
			Filters:        filters,
		}
		if err := s.producer.SendPersistTask(ctx, s.persistTopic, task); err == nil {
			if s.statusCache != nil {
				if cerr := s.statusCache.Set(ctx, img.ID, statuscache.Snapshot{Status: domain.JobStatusGenerating}); cerr != nil && s.logger != nil {
					s.logger.Warn().Err(cerr).Str("image_id", img.ID).Msg("set status snapshot")
				}
			}
			img.Status = domain.JobStatusGenerating
			return nil
		} else if s.logger != nil {
			s.logger.Warn().Err(err).Str("image_id", img.ID).Msg("enqueue persist task, writing inline")
		}
	}
	if err := s.images.Create(ctx, img); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	if s.statusCache != nil {
		if err := s.statusCache.Set(ctx, img.ID, statuscache.Snapshot{Status: domain.JobStatusCompleted, Progress: 100, ResultURL: img.ImageURL}); err != nil && s.logger != nil {
			s.logger.Warn().Err(err).Str("image_id", img.ID).Msg("set status snapshot")
		}
	}
	return nil
}

func (s *Service) recordUsage(userID, kind string, success bool, country string) {
	if s.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	event := domain.UsageEvent{
		UserID:      userID,
		Kind:        kind,
		Success:     success,
		CountryCode: country,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.analytics.RecordEvent(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("record usage event")
	}
}
