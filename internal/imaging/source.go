package imaging

import (
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
)

// ImageSource is an immutable reference to encoded image bytes plus their
// declared media type.
type ImageSource struct {
	data     []byte
	mimeType string
	name     string
}

// NewSource wraps encoded bytes. When mimeType is empty the type is sniffed
// from the content.
func NewSource(data []byte, mimeType string) *ImageSource {
	if mimeType == "" {
		mimeType = sniffMimeType(data)
	}
	return &ImageSource{data: data, mimeType: normalizeMimeType(mimeType)}
}

// SourceFromBase64 decodes a base64 payload. A leading data URI prefix
// ("data:image/png;base64,") is accepted and its media type is used when
// mimeType is empty.
func SourceFromBase64(payload, mimeType string) (*ImageSource, error) {
	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, &DecodeError{MimeType: mimeType, Err: fmt.Errorf("malformed data URI")}
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, &DecodeError{MimeType: mimeType, Err: fmt.Errorf("invalid base64 payload: %w", err)}
	}
	if len(data) == 0 {
		return nil, &DecodeError{MimeType: mimeType, Err: fmt.Errorf("empty payload")}
	}
	return NewSource(data, mimeType), nil
}

// SourceFromFile reads an image file from disk. The media type is sniffed
// from the file content.
func SourceFromFile(path string) (*ImageSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	src := NewSource(data, "")
	src.name = path
	return src, nil
}

// Bytes returns the encoded bytes. Callers must not modify the slice.
func (s *ImageSource) Bytes() []byte { return s.data }

// MimeType returns the media type of the encoded bytes.
func (s *ImageSource) MimeType() string { return s.mimeType }

// Name returns the file path the source was read from, if any.
func (s *ImageSource) Name() string { return s.name }

// Size returns the encoded size in bytes.
func (s *ImageSource) Size() int { return len(s.data) }

// Base64 returns the encoded bytes as standard base64 without a data URI prefix.
func (s *ImageSource) Base64() string {
	return base64.StdEncoding.EncodeToString(s.data)
}

func sniffMimeType(data []byte) string {
	return mimetype.Detect(data).String()
}

func normalizeMimeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	switch mimeType {
	case "image/jpg", "image/pjpeg":
		return "image/jpeg"
	case "image/x-png":
		return "image/png"
	}
	return mimeType
}

// SourceCache provides thread-safe caching of decoded images keyed by file
// path so repeated operations on the same file skip disk I/O and decoding.
//
// Cached images remain in memory until removed via Evict or Clear.
type SourceCache struct {
	mu      sync.RWMutex
	entries map[string]*cachedSource
}

type cachedSource struct {
	source *ImageSource
	img    *image.NRGBA
}

// NewSourceCache creates an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{
		entries: make(map[string]*cachedSource),
	}
}

// Load returns the source and decoded surface for path, reading and
// decoding the file on first use.
//
// The returned surface is shared with the cache; callers must treat it as
// read-only. Every pipeline stage allocates its own output, so passing it
// to Transform or Crop is safe.
func (c *SourceCache) Load(path string) (*ImageSource, *image.NRGBA, error) {
	c.mu.RLock()
	if e, ok := c.entries[path]; ok {
		c.mu.RUnlock()
		return e.source, e.img, nil
	}
	c.mu.RUnlock()

	src, err := SourceFromFile(path)
	if err != nil {
		return nil, nil, err
	}
	img, err := decodeSource(src)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.entries[path] = &cachedSource{source: src, img: img}
	c.mu.Unlock()

	return src, img, nil
}

// Evict removes a single path from the cache.
func (c *SourceCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Clear removes all entries from the cache.
func (c *SourceCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*cachedSource)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ImageInfo contains metadata about an image source.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	MimeType      string `json:"mime_type"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int    `json:"file_size_bytes"`
}

// Info summarises a decoded source.
func Info(src *ImageSource, img *image.NRGBA) *ImageInfo {
	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		MimeType:      src.MimeType(),
		HasAlpha:      !img.Opaque(),
		FileSizeBytes: src.Size(),
	}
}
