package staging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"nrw-report-service/internal/model"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func pngFile(name string) model.ImageFile {
	return model.ImageFile{Name: name, ContentType: "image/png", Data: pngBytes}
}

func TestSelectRejectsNonImage(t *testing.T) {
	s := New()
	if err := s.Select(pngFile("leak.png")); err != nil {
		t.Fatalf("select: %v", err)
	}

	err := s.Select(model.ImageFile{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hello")})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if f := s.File(); f == nil || f.Name != "leak.png" {
		t.Fatalf("expected previous selection to stay, got %+v", f)
	}
}

func TestSelectRejectsSpoofedContentType(t *testing.T) {
	s := New()
	err := s.Select(model.ImageFile{Name: "fake.png", ContentType: "image/png", Data: []byte("plain text pretending")})
	if !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if s.File() != nil {
		t.Fatal("expected nothing staged")
	}
}

func TestSelectDerivesPreview(t *testing.T) {
	s := New()
	if err := s.Select(pngFile("leak.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	preview, ok := s.WaitPreview(ctx)
	if !ok {
		t.Fatal("expected a preview")
	}
	if !strings.HasPrefix(preview, "data:image/png;base64,") {
		t.Fatalf("unexpected preview %.40q", preview)
	}
}

func TestClearDiscardsLatePreview(t *testing.T) {
	s := New()
	release := make(chan struct{})
	s.encode = func(f model.ImageFile) string {
		<-release
		return "data:late"
	}

	if err := s.Select(pngFile("leak.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	ready := s.ready
	s.Clear()
	close(release)
	<-ready

	if _, ok := s.Preview(); ok {
		t.Fatal("expected late preview to be discarded")
	}
	if s.File() != nil {
		t.Fatal("expected cleared selection")
	}
}

func TestReselectDiscardsStalePreview(t *testing.T) {
	s := New()
	release := make(chan struct{})
	s.encode = func(f model.ImageFile) string {
		if f.Name == "first.png" {
			<-release
		}
		return "data:" + f.Name
	}

	if err := s.Select(pngFile("first.png")); err != nil {
		t.Fatalf("select: %v", err)
	}
	stale := s.ready
	if err := s.Select(pngFile("second.png")); err != nil {
		t.Fatalf("select: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	preview, ok := s.WaitPreview(ctx)
	if !ok || preview != "data:second.png" {
		t.Fatalf("expected second preview, got %q %v", preview, ok)
	}

	close(release)
	<-stale
	if preview, _ := s.Preview(); preview != "data:second.png" {
		t.Fatalf("stale preview overwrote current one: %q", preview)
	}
}

func TestWaitPreviewWithNothingStaged(t *testing.T) {
	if _, ok := New().WaitPreview(context.Background()); ok {
		t.Fatal("expected no preview")
	}
}
