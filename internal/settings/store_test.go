package settings

import (
	"os"
	"path/filepath"
	"testing"

	"creationhub/internal/domain"
)

func TestNewStoreDefaultsWhenMissing(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	if got, want := store.Get(), domain.DefaultSettings(); got != want {
		t.Fatalf("Get() = %+v, want defaults %+v", got, want)
	}
}

func TestUpdatePersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	next := store.Get()
	next.DefaultQuality = "low"
	next.AutoSave = false
	if _, err := store.Update(next); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	got := reloaded.Get()
	if got.DefaultQuality != "low" || got.AutoSave {
		t.Fatalf("reloaded settings = %+v", got)
	}
}

func TestUpdateNormalizesInvalidValues(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	saved, err := store.Update(domain.HubSettings{DefaultQuality: "ultra", DefaultCompression: -3})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	def := domain.DefaultSettings()
	if saved.DefaultQuality != def.DefaultQuality || saved.DefaultCompression != def.DefaultCompression {
		t.Fatalf("Update did not normalize: %+v", saved)
	}
}

func TestNewStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path); err == nil {
		t.Fatal("expected error for corrupt settings file")
	}
}
