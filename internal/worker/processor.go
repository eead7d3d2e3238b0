package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"creationhub/internal/domain"
	"creationhub/internal/filters"
	"creationhub/internal/infra"
	"creationhub/internal/queue"
	"creationhub/internal/statuscache"
	"creationhub/internal/storage"
)

const maxArtifactBytes = 50 << 20

// Processor turns persist tasks into stored gallery rows: download the
// vendor artifact, run the filter chain, write the file, insert the row,
// and publish the final status snapshot.
type Processor struct {
	httpClient  *http.Client
	files       *storage.FileStore
	images      domain.ImageRepository
	statusCache *statuscache.StatusCache
	fileBaseURL string
	logger      *infra.Logger
}

// ProcessorDeps lists the processor's collaborators.
type ProcessorDeps struct {
	HTTPClient  *http.Client
	Files       *storage.FileStore
	Images      domain.ImageRepository
	StatusCache *statuscache.StatusCache
	FileBaseURL string
	Logger      *infra.Logger
}

func NewProcessor(deps ProcessorDeps) (*Processor, error) {
	if deps.Files == nil {
		return nil, errors.New("worker: file store is required")
	}
	if deps.Images == nil {
		return nil, errors.New("worker: image repository is required")
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	base := strings.TrimRight(deps.FileBaseURL, "/")
	if base == "" {
		base = "/files"
	}
	return &Processor{
		httpClient:  httpClient,
		files:       deps.Files,
		images:      deps.Images,
		statusCache: deps.StatusCache,
		fileBaseURL: base,
		logger:      deps.Logger,
	}, nil
}

// Handle processes one task. Returning an error leaves the message
// unacknowledged so the broker redelivers it.
func (p *Processor) Handle(ctx context.Context, task *queue.PersistTask) error {
	data, err := p.download(ctx, task.SourceURL)
	if err != nil {
		p.fail(ctx, task, fmt.Sprintf("download artifact: %v", err))
		return err
	}

	chain, err := filters.ParseChain(task.Filters)
	if err != nil {
		// an invalid chain is permanent: store the original untouched
		if p.logger != nil {
			p.logger.Warn().Err(err).Str("image_id", task.ImageID).Msg("invalid filter chain, storing original")
		}
		chain = nil
	}
	if len(chain) > 0 {
		src, decodeErr := imaging.Decode(bytes.NewReader(data))
		if decodeErr != nil {
			if p.logger != nil {
				p.logger.Warn().Err(decodeErr).Str("image_id", task.ImageID).Msg("decode artifact, storing original")
			}
		} else {
			processed := chain.Apply(src)
			encoded, encErr := filters.Encode(processed, formatFromURL(task.SourceURL), 0)
			if encErr == nil {
				data = encoded
			} else if p.logger != nil {
				p.logger.Warn().Err(encErr).Str("image_id", task.ImageID).Msg("encode filtered artifact, storing original")
			}
		}
	}

	key := fmt.Sprintf("%s/%s.%s", task.UserID, task.ImageID, formatFromURL(task.SourceURL))
	storedKey, err := p.files.Write(ctx, key, data)
	if err != nil {
		p.fail(ctx, task, fmt.Sprintf("store artifact: %v", err))
		return err
	}
	imageURL := p.fileBaseURL + "/" + storedKey

	now := time.Now().UTC()
	img := &domain.GeneratedImage{
		ID:             task.ImageID,
		UserID:         task.UserID,
		Prompt:         task.Prompt,
		RevisedPrompt:  task.RevisedPrompt,
		ImageURL:       imageURL,
		Quality:        task.Quality,
		Size:           task.Size,
		Model:          task.Model,
		Status:         domain.JobStatusCompleted,
		ConversationID: task.ConversationID,
		ParentImageID:  task.ParentImageID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.images.Create(ctx, img); err != nil {
		p.fail(ctx, task, fmt.Sprintf("insert row: %v", err))
		return err
	}

	if p.statusCache != nil {
		snap := statuscache.Snapshot{Status: domain.JobStatusCompleted, Progress: 100, ResultURL: imageURL}
		if err := p.statusCache.Set(ctx, task.ImageID, snap); err != nil && p.logger != nil {
			p.logger.Warn().Err(err).Str("image_id", task.ImageID).Msg("publish status snapshot")
		}
	}
	if p.logger != nil {
		p.logger.Info().Str("image_id", task.ImageID).Str("key", storedKey).Msg("persisted artifact")
	}
	return nil
}

func (p *Processor) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArtifactBytes {
		return nil, errors.New("artifact exceeds size limit")
	}
	if len(data) == 0 {
		return nil, errors.New("empty artifact")
	}
	return data, nil
}

func (p *Processor) fail(ctx context.Context, task *queue.PersistTask, msg string) {
	if p.statusCache == nil {
		return
	}
	snap := statuscache.Snapshot{Status: domain.JobStatusFailed, ErrorMessage: msg}
	if err := p.statusCache.Set(ctx, task.ImageID, snap); err != nil && p.logger != nil {
		p.logger.Warn().Err(err).Str("image_id", task.ImageID).Msg("publish failure snapshot")
	}
}

func formatFromURL(sourceURL string) string {
	trimmed := sourceURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	switch {
	case strings.HasSuffix(trimmed, ".jpg"), strings.HasSuffix(trimmed, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(trimmed, ".webp"):
		return "webp"
	}
	return "png"
}
