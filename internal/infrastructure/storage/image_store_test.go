package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failOn    string
	deleteErr error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if f.failOn != "" && strings.Contains(key, f.failOn) {
		return "", errors.New("bucket unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "http://minio.local/bucket/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return f.deleteErr
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestImageStore_Store(t *testing.T) {
	objects := newFakeObjects()
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	ref, err := store.Store(context.Background(), Upload{Filename: "cabin.png", Data: pngBytes(t, 400, 300)})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref.Key, "listings/"))
	assert.True(t, strings.HasSuffix(ref.Key, ".jpg"))
	assert.Equal(t, "http://minio.local/bucket/"+ref.Key, ref.URL)
	assert.Contains(t, objects.objects, ref.Key)
	assert.Contains(t, objects.objects, PreviewKey(ref.Key))

	preview, _, err := image.Decode(bytes.NewReader(objects.objects[PreviewKey(ref.Key)]))
	require.NoError(t, err)
	assert.Equal(t, 250, preview.Bounds().Dx())
	assert.Equal(t, 200, preview.Bounds().Dy())
}

func TestImageStore_Store_InvalidImage(t *testing.T) {
	objects := newFakeObjects()
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	_, err := store.Store(context.Background(), Upload{Data: []byte("definitely not an image")})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Empty(t, objects.objects)
}

func TestImageStore_Store_TooLarge(t *testing.T) {
	store := NewImageStore(newFakeObjects(), NewImageProcessor(10), "listings", time.Second)

	_, err := store.Store(context.Background(), Upload{Data: pngBytes(t, 20, 20)})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

// pngHeader is a PNG signature plus an IHDR chunk declaring w x h RGBA, with
// no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 4+13)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8 // bit depth
	ihdr[13] = 6 // truecolor with alpha

	buf := new(bytes.Buffer)
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func TestImageProcessor_ValidateImage_Dimensions(t *testing.T) {
	p := NewImageProcessor(5 << 20)

	huge := pngHeader(60000, 60000)
	require.Less(t, len(huge), 64)
	err := p.ValidateImage(huge)
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "60000x60000")

	assert.NoError(t, p.ValidateImage(pngHeader(4000, 3000)))
}

func TestImageStore_Store_HugeDimensionsNeverDecoded(t *testing.T) {
	objects := newFakeObjects()
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	_, err := store.Store(context.Background(), Upload{Data: pngHeader(60000, 60000)})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Empty(t, objects.objects)
}

func TestImageStore_Store_BackendFailure(t *testing.T) {
	objects := newFakeObjects()
	objects.failOn = "listings/"
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	_, err := store.Store(context.Background(), Upload{Data: pngBytes(t, 50, 50)})
	assert.ErrorIs(t, err, ErrStorage)
}

func TestImageStore_Store_PreviewFailureRemovesOriginal(t *testing.T) {
	objects := newFakeObjects()
	objects.failOn = previewSuffix
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	_, err := store.Store(context.Background(), Upload{Data: pngBytes(t, 50, 50)})
	assert.ErrorIs(t, err, ErrStorage)
	assert.Empty(t, objects.objects)
}

func TestImageStore_Store_SurvivesCancelledContext(t *testing.T) {
	objects := newFakeObjects()
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Store(ctx, Upload{Data: pngBytes(t, 50, 50)})
	require.NoError(t, err)
}

func TestImageStore_Delete(t *testing.T) {
	objects := newFakeObjects()
	store := NewImageStore(objects, NewImageProcessor(0), "listings", time.Second)

	ref, err := store.Store(context.Background(), Upload{Data: pngBytes(t, 50, 50)})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), ref.Key))
	assert.Empty(t, objects.objects)
	assert.NoError(t, store.Delete(context.Background(), ""))
}

func TestImageStore_PreviewURL(t *testing.T) {
	store := NewImageStore(newFakeObjects(), NewImageProcessor(0), "listings", time.Second)

	assert.Equal(t, "http://x/b/listings/a_preview.jpg", store.PreviewURL("http://x/b/listings/a.jpg"))
	assert.Equal(t, "http://x/b/listings/a_preview.jpg", store.PreviewURL("http://x/b/listings/a_preview.jpg"))
	assert.Equal(t, "https://images.example.com/pic", store.PreviewURL("https://images.example.com/pic"))
}
