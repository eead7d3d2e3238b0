package hub

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"creationhub/internal/domain"
	"creationhub/internal/providers/image"
	"creationhub/internal/queue"
	"creationhub/internal/settings"
)

type stubImageRepo struct {
	created []domain.GeneratedImage
	listed  []domain.GeneratedImage
	deleted []string
	failAll bool
}

func (s *stubImageRepo) Create(ctx context.Context, img *domain.GeneratedImage) error {
	if s.failAll {
		return errors.New("db down")
	}
	s.created = append(s.created, *img)
	return nil
}

func (s *stubImageRepo) GetByID(ctx context.Context, id string) (*domain.GeneratedImage, error) {
	for i := range s.created {
		if s.created[i].ID == id {
			return &s.created[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubImageRepo) List(ctx context.Context, filter domain.ImageFilter) ([]domain.GeneratedImage, error) {
	return s.listed, nil
}

func (s *stubImageRepo) Delete(ctx context.Context, id, userID string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubProvider struct {
	generateCalls int
	editCalls     int
	result        *image.Result
	err           error
}

func (s *stubProvider) Generate(ctx context.Context, prompt string, opts domain.ImageOptions) (*image.Result, error) {
	s.generateCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubProvider) Edit(ctx context.Context, imageData []byte, filename, prompt string, opts domain.ImageOptions) (*image.Result, error) {
	s.editCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubProducer struct {
	tasks []queue.PersistTask
	err   error
}

func (s *stubProducer) SendPersistTask(ctx context.Context, topic string, task *queue.PersistTask) error {
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, *task)
	return nil
}

func (s *stubProducer) Close() error { return nil }

func newTestService(t *testing.T, repo *stubImageRepo, provider *stubProvider, producer queue.Producer, autoSave bool) *Service {
	t.Helper()
	store, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("settings store: %v", err)
	}
	next := store.Get()
	next.AutoSave = autoSave
	if _, err := store.Update(next); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	svc, err := NewService(Deps{
		Images:       repo,
		Provider:     provider,
		Producer:     producer,
		PersistTopic: "persist",
		Settings:     store,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestGenerateImageInlinePersist(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "https://cdn/a.png", RevisedPrompt: "refined"}}
	svc := newTestService(t, repo, provider, nil, false)

	img, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "a lighthouse at dusk"})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if img.Status != domain.JobStatusCompleted {
		t.Fatalf("Status = %q", img.Status)
	}
	if img.ImageURL != "https://cdn/a.png" {
		t.Fatalf("ImageURL = %q", img.ImageURL)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(repo.created))
	}
	// defaults from settings must be applied before validation
	if repo.created[0].Quality != "high" || repo.created[0].Size != "1024x1024" {
		t.Fatalf("defaults not applied: %+v", repo.created[0])
	}
}

func TestGenerateImageAutoSaveEnqueues(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "https://cdn/a.png"}}
	producer := &stubProducer{}
	svc := newTestService(t, repo, provider, producer, true)

	img, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "a lighthouse at dusk", Filters: []string{"grayscale"}})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if len(producer.tasks) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(producer.tasks))
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no inline insert, got %d", len(repo.created))
	}
	if img.Status != domain.JobStatusGenerating {
		t.Fatalf("Status = %q, want generating while worker persists", img.Status)
	}
	task := producer.tasks[0]
	if task.SourceURL != "https://cdn/a.png" || len(task.Filters) != 1 {
		t.Fatalf("task = %+v", task)
	}
}

func TestGenerateImageQueueFailureFallsBackInline(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "https://cdn/a.png"}}
	producer := &stubProducer{err: errors.New("broker down")}
	svc := newTestService(t, repo, provider, producer, true)

	img, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "a lighthouse at dusk"})
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected inline fallback insert, got %d", len(repo.created))
	}
	if img.Status != domain.JobStatusCompleted {
		t.Fatalf("Status = %q", img.Status)
	}
}

func TestGenerateImageValidatesBeforeProvider(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "x"}}
	svc := newTestService(t, repo, provider, nil, false)

	if _, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "ab"}); !errors.Is(err, domain.ErrInvalidPrompt) {
		t.Fatalf("err = %v, want ErrInvalidPrompt", err)
	}
	if _, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "fine prompt", Options: domain.ImageOptions{Quality: "ultra"}}); !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if provider.generateCalls != 0 {
		t.Fatalf("provider called %d times before validation passed", provider.generateCalls)
	}
}

func TestGenerateImageWrapsProviderFailure(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{err: errors.New("content policy")}
	svc := newTestService(t, repo, provider, nil, false)

	_, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "a lighthouse"})
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
}

func TestGenerateImageWrapsStorageFailure(t *testing.T) {
	repo := &stubImageRepo{failAll: true}
	provider := &stubProvider{result: &image.Result{ImageURL: "x"}}
	svc := newTestService(t, repo, provider, nil, false)

	_, err := svc.GenerateImage(context.Background(), GenerateParams{UserID: "u1", Prompt: "a lighthouse"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage", err)
	}
}

func TestEditImageRequiresSource(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "x"}}
	svc := newTestService(t, repo, provider, nil, false)

	_, err := svc.EditImage(context.Background(), EditParams{GenerateParams: GenerateParams{UserID: "u1", Prompt: "warmer tones"}})
	if !errors.Is(err, domain.ErrInvalidOption) {
		t.Fatalf("err = %v", err)
	}
	if provider.editCalls != 0 {
		t.Fatal("provider should not be called without a source image")
	}
}

func TestEditImageLinksParent(t *testing.T) {
	repo := &stubImageRepo{}
	provider := &stubProvider{result: &image.Result{ImageURL: "https://cdn/b.png"}}
	svc := newTestService(t, repo, provider, nil, false)

	img, err := svc.EditImage(context.Background(), EditParams{
		GenerateParams: GenerateParams{UserID: "u1", Prompt: "warmer tones"},
		ImageData:      []byte("png"),
		Filename:       "src.png",
		ParentImageID:  "parent-1",
	})
	if err != nil {
		t.Fatalf("EditImage returned error: %v", err)
	}
	if img.ParentImageID != "parent-1" {
		t.Fatalf("ParentImageID = %q", img.ParentImageID)
	}
}

func TestGetImageRefusesCrossUser(t *testing.T) {
	repo := &stubImageRepo{created: []domain.GeneratedImage{{ID: "i1", UserID: "owner"}}}
	provider := &stubProvider{}
	svc := newTestService(t, repo, provider, nil, false)

	if _, err := svc.GetImage(context.Background(), "i1", "intruder"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if img, err := svc.GetImage(context.Background(), "i1", "owner"); err != nil || img.ID != "i1" {
		t.Fatalf("owner read failed: %v", err)
	}
}
