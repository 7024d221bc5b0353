package service

import (
	"context"
	"errors"
	"testing"
	"trading_edu_backend/internal/config"
)

func TestIsObjectKey(t *testing.T) {
	tests := []struct {
		image string
		want  bool
	}{
		{"badges/basics-starter.png", true},
		{"perfect.svg", true},
		{"🏆", false},
		{"", false},
		{"https://cdn.example.com/a.png", false},
		{"/uploads/a.png", false},
		{"no-extension", false},
		{"with space.png", false},
	}
	for _, tt := range tests {
		if got := IsObjectKey(tt.image); got != tt.want {
			t.Errorf("IsObjectKey(%q) = %v, want %v", tt.image, got, tt.want)
		}
	}
}

type failingProvider struct{}

func (failingProvider) URL(context.Context, string) (string, error) {
	return "", errors.New("signing failed")
}

func TestResolveImage(t *testing.T) {
	ctx := context.Background()
	local := NewStorageService(&config.Config{Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()}})

	if got := local.ResolveImage(ctx, "badges/a.png"); got != "/uploads/badges/a.png" {
		t.Errorf("local ResolveImage() = %q", got)
	}
	if got := local.ResolveImage(ctx, "🎓"); got != "🎓" {
		t.Errorf("emoji changed to %q", got)
	}

	broken := &StorageService{Provider: failingProvider{}}
	if got := broken.ResolveImage(ctx, "badges/a.png"); got != "badges/a.png" {
		t.Errorf("failed resolve = %q, want raw key", got)
	}

	var none *StorageService
	if got := none.ResolveImage(ctx, "badges/a.png"); got != "badges/a.png" {
		t.Errorf("nil service resolve = %q", got)
	}
}

// Presigning is computed locally once the region is known.
func TestMinioProviderPresigns(t *testing.T) {
	p, err := NewMinioStorageProvider(&config.StorageConfig{
		MinioEndpoint: "localhost:9000",
		MinioAccessID: "access",
		MinioSecret:   "secretsecret",
		MinioBucket:   "badges",
		MinioRegion:   "us-east-1",
	})
	if err != nil {
		t.Fatalf("NewMinioStorageProvider() error = %v", err)
	}
	u, err := p.URL(context.Background(), "badges/a.png")
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if want := "http://localhost:9000/badges/badges/a.png?"; len(u) < len(want) || u[:len(want)] != want {
		t.Errorf("URL() = %q, want prefix %q", u, want)
	}
}
