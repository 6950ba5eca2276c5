package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"path"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"localpulse/models"
	"localpulse/storage"
)

// Allowed MIME types, keyed by the content-sniffed type. The client-declared
// type is never trusted.
var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

var allowedVideoTypes = map[string]string{
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/ogg":       "ogv",
	"application/ogg": "ogv",
}

type derivativeSize struct {
	Name   string
	Width  int
	Height int
}

var derivativeSizes = []derivativeSize{
	{"thumbnail", 150, 150},
	{"medium", 800, 600},
	{"large", 1200, 900},
}

var (
	youtubeRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([A-Za-z0-9_-]+)`)
	vimeoRe   = regexp.MustCompile(`vimeo\.com/([0-9]+)`)
)

type MediaService interface {
	// IngestImage validates, stores and derives sizes for one image. All
	// validation passes before any byte is persisted; a failed
	// post-store verification deletes the written files.
	IngestImage(f *models.UploadedFile) (*models.StoredImage, error)
	IngestVideoFile(f *models.UploadedFile) (*models.StoredVideo, error)
	// ParseVideoURL recognizes YouTube and Vimeo URLs by pattern alone;
	// it performs no network I/O. Unrecognized URLs return nil.
	ParseVideoURL(url string) *models.VideoEmbed
	// DeleteImage removes the original and every derived size sharing
	// its filename stem.
	DeleteImage(url string) error
	DeleteVideoFile(url string) error
}

type mediaService struct {
	store        storage.Storage
	log          *logrus.Logger
	maxImageSize int64
	maxVideoSize int64
}

func NewMediaService(store storage.Storage, log *logrus.Logger, maxImageSize, maxVideoSize int64) MediaService {
	return &mediaService{
		store:        store,
		log:          log,
		maxImageSize: maxImageSize,
		maxVideoSize: maxVideoSize,
	}
}

func (s *mediaService) IngestImage(f *models.UploadedFile) (*models.StoredImage, error) {
	if f.Err != nil {
		return nil, models.NewValidationError("image", "upload failed: "+f.Err.Error())
	}
	if int64(len(f.Data)) > s.maxImageSize {
		return nil, models.NewValidationError("image",
			fmt.Sprintf("image exceeds maximum size of %d MiB", s.maxImageSize/(1024*1024)))
	}

	mime := mimetype.Detect(f.Data).String()
	ext, ok := allowedImageTypes[mime]
	if !ok {
		return nil, models.NewValidationError("image", "unsupported image type "+mime)
	}

	src, err := imaging.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, models.NewValidationError("image", "image could not be decoded")
	}

	// Random token filename: independent of the client name, so neither
	// path traversal nor enumeration is possible.
	stem := uuid.NewString()
	name := "images/" + stem + "." + ext

	url, err := s.store.Store(name, f.Data)
	if err != nil {
		return nil, models.StorageError{Op: "store image", Err: err}
	}

	derivatives, err := s.storeDerivatives(src, "images/"+stem, mime)
	if err != nil {
		s.cleanup(url, derivatives)
		return nil, err
	}

	// Re-sniff the persisted bytes to catch storage-layer corruption or
	// type confusion before handing out a trusted descriptor.
	stored, err := s.store.Read(url)
	if err != nil || mimetype.Detect(stored).String() != mime {
		s.cleanup(url, derivatives)
		if err == nil {
			err = fmt.Errorf("stored image failed type verification")
		}
		return nil, models.StorageError{Op: "verify image", Err: err}
	}

	return &models.StoredImage{URL: url, Derivatives: derivatives}, nil
}

func (s *mediaService) storeDerivatives(src image.Image, stem, mime string) (map[string]string, error) {
	// JPEG has no alpha channel, so it gets a white background; every
	// other allowed format keeps transparency. WebP derivatives are
	// encoded as PNG since there is no webp encoder.
	var bg color.Color = color.Transparent
	format := imaging.PNG
	ext := "png"
	switch mime {
	case "image/jpeg":
		bg = color.White
		format = imaging.JPEG
		ext = "jpg"
	case "image/gif":
		format = imaging.GIF
		ext = "gif"
	}

	derivatives := make(map[string]string, len(derivativeSizes))
	for _, size := range derivativeSizes {
		fitted := imaging.Fit(src, size.Width, size.Height, imaging.Lanczos)
		canvas := imaging.New(size.Width, size.Height, bg)
		canvas = imaging.PasteCenter(canvas, fitted)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, canvas, format); err != nil {
			return derivatives, models.StorageError{Op: "encode " + size.Name, Err: err}
		}

		url, err := s.store.Store(fmt.Sprintf("%s_%s.%s", stem, size.Name, ext), buf.Bytes())
		if err != nil {
			return derivatives, models.StorageError{Op: "store " + size.Name, Err: err}
		}
		derivatives[size.Name] = url
	}
	return derivatives, nil
}

func (s *mediaService) cleanup(url string, derivatives map[string]string) {
	if _, err := s.store.Delete(url); err != nil {
		s.log.WithField("url", url).WithError(err).Warn("media cleanup failed")
	}
	for _, d := range derivatives {
		if _, err := s.store.Delete(d); err != nil {
			s.log.WithField("url", d).WithError(err).Warn("media cleanup failed")
		}
	}
}

func (s *mediaService) IngestVideoFile(f *models.UploadedFile) (*models.StoredVideo, error) {
	if f.Err != nil {
		return nil, models.NewValidationError("video", "upload failed: "+f.Err.Error())
	}
	if int64(len(f.Data)) > s.maxVideoSize {
		return nil, models.NewValidationError("video",
			fmt.Sprintf("video exceeds maximum size of %d MiB", s.maxVideoSize/(1024*1024)))
	}

	mime := mimetype.Detect(f.Data).String()
	ext, ok := allowedVideoTypes[mime]
	if !ok {
		return nil, models.NewValidationError("video", "unsupported video type "+mime)
	}

	name := "videos/" + uuid.NewString() + "." + ext
	url, err := s.store.Store(name, f.Data)
	if err != nil {
		return nil, models.StorageError{Op: "store video", Err: err}
	}

	title := strings.TrimSuffix(path.Base(f.Filename), path.Ext(f.Filename))
	return &models.StoredVideo{URL: url, Title: title}, nil
}

func (s *mediaService) ParseVideoURL(url string) *models.VideoEmbed {
	if m := youtubeRe.FindStringSubmatch(url); m != nil {
		id := m[1]
		return &models.VideoEmbed{
			Type:         models.VideoTypeYouTube,
			ExternalID:   id,
			ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id),
			EmbedCode:    fmt.Sprintf(`<iframe width="560" height="315" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`, id),
		}
	}

	if m := vimeoRe.FindStringSubmatch(url); m != nil {
		id := m[1]
		// Vimeo thumbnails require an API call this core never makes.
		return &models.VideoEmbed{
			Type:       models.VideoTypeVimeo,
			ExternalID: id,
			EmbedCode:  fmt.Sprintf(`<iframe src="https://player.vimeo.com/video/%s" width="560" height="315" frameborder="0" allowfullscreen></iframe>`, id),
		}
	}

	return nil
}

func (s *mediaService) DeleteImage(url string) error {
	dot := strings.LastIndex(url, ".")
	if dot < 0 {
		dot = len(url)
	}
	stem, ext := url[:dot], url[dot:]

	if _, err := s.store.Delete(url); err != nil {
		return err
	}
	for _, size := range derivativeSizes {
		if _, err := s.store.Delete(fmt.Sprintf("%s_%s%s", stem, size.Name, ext)); err != nil {
			return err
		}
		// WebP originals carry PNG derivatives.
		if ext != ".png" {
			if _, err := s.store.Delete(fmt.Sprintf("%s_%s.png", stem, size.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *mediaService) DeleteVideoFile(url string) error {
	_, err := s.store.Delete(url)
	return err
}
