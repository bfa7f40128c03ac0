package storage

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// BuildObjectKey returns "<unix-millis>-<random>.<ext>". The extension comes
// from the original file name, or from the sniffed type when the name has
// none.
func BuildObjectKey(now time.Time, fileName string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || ext == "." {
		ext = mimetype.Detect(data).Extension()
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix + ext
}

func pathEscape(segment string) string {
	return url.PathEscape(segment)
}
