package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource_SniffsMimeType(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(4, 4, red))

	src := NewSource(data, "")
	assert.Equal(t, "image/png", src.MimeType())
	assert.Equal(t, len(data), src.Size())
}

func TestNewSource_NormalizesDeclaredType(t *testing.T) {
	src := NewSource([]byte{1, 2, 3}, "IMAGE/JPG; charset=binary")
	assert.Equal(t, "image/jpeg", src.MimeType())
}

func TestSourceFromBase64(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(4, 4, red))
	payload := base64.StdEncoding.EncodeToString(data)

	t.Run("plain payload", func(t *testing.T) {
		src, err := SourceFromBase64(payload, "image/png")
		require.NoError(t, err)
		assert.Equal(t, data, src.Bytes())
		assert.Equal(t, payload, src.Base64())
	})

	t.Run("data URI", func(t *testing.T) {
		src, err := SourceFromBase64("data:image/png;base64,"+payload, "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", src.MimeType())
		assert.Equal(t, data, src.Bytes())
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := SourceFromBase64("not base64!!", "image/png")
		var de *DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "image/png", de.MimeType)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := SourceFromBase64("", "image/png")
		var de *DecodeError
		assert.True(t, errors.As(err, &de))
	})
}

func TestDecode(t *testing.T) {
	src := NewSource(encodePNG(t, createPatternImage(30, 20)), "")

	img, err := Decode(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, pixel(img, 0, 0))
}

func TestDecode_InvalidPayload(t *testing.T) {
	_, err := Decode(context.Background(), NewSource([]byte("definitely not an image"), "image/png"))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, err.Error(), "image/png")
}

func TestDecode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Decode(ctx, NewSource(encodePNG(t, createInMemoryImage(2, 2, red)), ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceCache_Load(t *testing.T) {
	cache := NewSourceCache()
	path := writeTempPNG(t, createInMemoryImage(100, 100, red))

	src1, img1, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, src1.Name())
	assert.Equal(t, 100, img1.Bounds().Dx())

	src2, img2, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, src1, src2, "second Load should hit the cache")
	assert.Same(t, img1, img2)
	assert.Equal(t, 1, cache.Len())
}

func TestSourceCache_Load_NonExistent(t *testing.T) {
	_, _, err := NewSourceCache().Load("/nonexistent/path/to/image.png")
	assert.Error(t, err)
}

func TestSourceCache_EvictAndClear(t *testing.T) {
	cache := NewSourceCache()
	p1 := writeTempPNG(t, createInMemoryImage(4, 4, red))
	p2 := writeTempPNG(t, createInMemoryImage(4, 4, blue))

	_, img1, err := cache.Load(p1)
	require.NoError(t, err)
	_, _, err = cache.Load(p2)
	require.NoError(t, err)
	require.Equal(t, 2, cache.Len())

	cache.Evict(p1)
	assert.Equal(t, 1, cache.Len())
	_, reloaded, err := cache.Load(p1)
	require.NoError(t, err)
	assert.NotSame(t, img1, reloaded)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
}

func TestSourceCache_ConcurrentAccess(t *testing.T) {
	cache := NewSourceCache()
	path := writeTempPNG(t, createInMemoryImage(50, 50, green))

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load failed: %v", err)
	}
}

func TestInfo(t *testing.T) {
	data := encodePNG(t, createInMemoryImage(30, 10, red))
	src := NewSource(data, "")
	img, err := Decode(context.Background(), src)
	require.NoError(t, err)

	info := Info(src, img)
	assert.Equal(t, 30, info.Width)
	assert.Equal(t, 10, info.Height)
	assert.Equal(t, "image/png", info.MimeType)
	assert.False(t, info.HasAlpha)
	assert.Equal(t, len(data), info.FileSizeBytes)
}
