package staging

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"nrw-report-service/internal/model"
)

var ErrInvalidType = errors.New("selected file is not an image")

// ImageStaging holds at most one pending photo and its preview. Previews are
// derived in the background; one that finishes after the selection changed or
// was cleared is dropped.
type ImageStaging struct {
	mu         sync.Mutex
	file       *model.ImageFile
	preview    string
	generation uint64
	ready      chan struct{}
	encode     func(model.ImageFile) string
}

func New() *ImageStaging {
	return &ImageStaging{encode: DataURL}
}

// Select replaces the staged file. Non-image files are rejected and leave the
// current selection as it was.
func (s *ImageStaging) Select(file model.ImageFile) error {
	if !IsImage(file) {
		return ErrInvalidType
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	staged := file
	s.file = &staged
	s.preview = ""
	ready := make(chan struct{})
	s.ready = ready
	encode := s.encode
	s.mu.Unlock()

	go func() {
		preview := encode(staged)
		s.mu.Lock()
		if s.generation == gen {
			s.preview = preview
		}
		s.mu.Unlock()
		close(ready)
	}()
	return nil
}

func (s *ImageStaging) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.file = nil
	s.preview = ""
	s.ready = nil
}

// File returns the staged file, or nil.
func (s *ImageStaging) File() *model.ImageFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	f := *s.file
	return &f
}

// Preview returns the preview if it has been derived for the current file.
func (s *ImageStaging) Preview() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview, s.preview != ""
}

// WaitPreview blocks until the current selection's preview is derived. It
// returns false when nothing is staged or the selection changed meanwhile.
func (s *ImageStaging) WaitPreview(ctx context.Context) (string, bool) {
	s.mu.Lock()
	ready, gen := s.ready, s.generation
	s.mu.Unlock()
	if ready == nil {
		return "", false
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return "", false
	}
	return s.preview, s.preview != ""
}

// IsImage requires both the declared and the sniffed content type to be an
// image type.
func IsImage(file model.ImageFile) bool {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(file.ContentType)), "image/") {
		return false
	}
	if len(file.Data) == 0 {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(file.Data).String(), "image/")
}

func DataURL(file model.ImageFile) string {
	mtype := mimetype.Detect(file.Data).String()
	return "data:" + mtype + ";base64," + base64.StdEncoding.EncodeToString(file.Data)
}
