package services

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localpulse/models"
)

// fakeStorage keeps blobs in memory and records every call.
type fakeStorage struct {
	files   map[string][]byte
	stores  []string
	deletes []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (f *fakeStorage) Store(name string, data []byte) (string, error) {
	url := "/uploads/" + name
	f.files[url] = data
	f.stores = append(f.stores, name)
	return url, nil
}

func (f *fakeStorage) Read(url string) ([]byte, error) {
	data, ok := f.files[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeStorage) Delete(url string) (bool, error) {
	f.deletes = append(f.deletes, url)
	_, ok := f.files[url]
	delete(f.files, url)
	return ok, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestMediaService(store *fakeStorage) MediaService {
	log := logrus.New()
	return NewMediaService(store, log, 5*1024*1024, 50*1024*1024)
}

func TestIngestImageStoresOriginalAndDerivatives(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	img, err := svc.IngestImage(&models.UploadedFile{
		Filename: "hall.png",
		Data:     pngBytes(t, 320, 240),
	})
	require.NoError(t, err)
	assert.Contains(t, img.URL, "/uploads/images/")
	assert.Len(t, img.Derivatives, 3)
	assert.Contains(t, img.Derivatives, "thumbnail")
	assert.Contains(t, img.Derivatives, "medium")
	assert.Contains(t, img.Derivatives, "large")
	assert.Len(t, store.stores, 4)
}

func TestIngestImageRejectsOversize(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	_, err := svc.IngestImage(&models.UploadedFile{
		Filename: "big.png",
		Data:     make([]byte, 6*1024*1024),
	})
	var ve models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "image")
	// Nothing may touch storage before validation passes.
	assert.Empty(t, store.stores)
}

func TestIngestImageRejectsSniffedType(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	// Declared name says png, content says plain text.
	_, err := svc.IngestImage(&models.UploadedFile{
		Filename: "sneaky.png",
		Data:     []byte("#!/bin/sh\necho pwned\n"),
	})
	var ve models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, store.stores)
}

func TestIngestImageTransportError(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	_, err := svc.IngestImage(&models.UploadedFile{
		Filename: "broken.png",
		Err:      errors.New("unexpected EOF"),
	})
	var ve models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, store.stores)
}

func TestIngestVideoFileRejectsSniffedType(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	_, err := svc.IngestVideoFile(&models.UploadedFile{
		Filename: "clip.mp4",
		Data:     []byte("just text pretending to be video"),
	})
	var ve models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, store.stores)
}

func TestParseVideoURL(t *testing.T) {
	svc := newTestMediaService(newFakeStorage())

	tests := []struct {
		url      string
		wantType models.VideoType
		wantID   string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", models.VideoTypeYouTube, "dQw4w9WgXcQ"},
		{"https://youtu.be/abc123XYZ_-", models.VideoTypeYouTube, "abc123XYZ_-"},
		{"https://vimeo.com/76979871", models.VideoTypeVimeo, "76979871"},
	}
	for _, tt := range tests {
		embed := svc.ParseVideoURL(tt.url)
		require.NotNil(t, embed, tt.url)
		assert.Equal(t, tt.wantType, embed.Type)
		assert.Equal(t, tt.wantID, embed.ExternalID)
		assert.Contains(t, embed.EmbedCode, tt.wantID)
	}

	assert.Nil(t, svc.ParseVideoURL("https://example.com/clip.mp4"))
	assert.Nil(t, svc.ParseVideoURL("not a url"))
}

func TestParseVideoURLThumbnails(t *testing.T) {
	svc := newTestMediaService(newFakeStorage())

	yt := svc.ParseVideoURL("https://youtu.be/dQw4w9WgXcQ")
	require.NotNil(t, yt)
	assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg", yt.ThumbnailURL)

	vm := svc.ParseVideoURL("https://vimeo.com/76979871")
	require.NotNil(t, vm)
	assert.Empty(t, vm.ThumbnailURL)
}

func TestDeleteImageRemovesDerivatives(t *testing.T) {
	store := newFakeStorage()
	svc := newTestMediaService(store)

	img, err := svc.IngestImage(&models.UploadedFile{
		Filename: "hall.png",
		Data:     pngBytes(t, 64, 64),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteImage(img.URL))
	assert.Empty(t, store.files)
}
