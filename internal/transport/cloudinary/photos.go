// Package cloudinary stores contact photos in Cloudinary.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
	"go.uber.org/zap"
)

// Config holds Cloudinary credentials and the target folder.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	Logger    *zap.Logger
}

// Photo delivery transformation applied eagerly on upload.
const photoEager = "q_auto,f_auto,w_400,h_400,c_fill,g_face"

// uploadAPI is the subset of *uploader.API the store uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// PhotoStore uploads and deletes contact photos. Each contact owns one image,
// keyed by its id inside the configured folder.
type PhotoStore struct {
	api    uploadAPI
	folder string
	logger *zap.Logger
}

// NewPhotoStore creates a photo store from credentials.
func NewPhotoStore(cfg *Config) (*PhotoStore, error) {
	c, err := config.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	up, err := uploader.NewWithConfiguration(c)
	if err != nil {
		return nil, fmt.Errorf("cloudinary uploader: %w", err)
	}
	return newPhotoStore(up, cfg.Folder, cfg.Logger), nil
}

func newPhotoStore(api uploadAPI, folder string, logger *zap.Logger) *PhotoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoStore{api: api, folder: strings.Trim(folder, "/"), logger: logger}
}

// Upload stores the image read from r as the photo of contactID, replacing
// any previous one, and returns its HTTPS URL.
func (s *PhotoStore) Upload(ctx context.Context, contactID string, r io.Reader) (string, error) {
	overwrite := true
	res, err := s.api.Upload(ctx, r, uploader.UploadParams{
		Folder:    s.folder,
		PublicID:  contactID,
		Overwrite: &overwrite,
		Eager:     photoEager,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo %s: %w", contactID, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload photo %s: %s", contactID, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload photo %s: empty url in response", contactID)
	}

	s.logger.Debug("Photo uploaded",
		zap.String("contact_id", contactID),
		zap.String("public_id", res.PublicID),
	)
	return res.SecureURL, nil
}

// Delete removes the image behind url. A missing image is not an error.
func (s *PhotoStore) Delete(ctx context.Context, url string) error {
	publicID, err := PublicIDFromURL(url)
	if err != nil {
		return err
	}
	res, err := s.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy photo %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("destroy photo %s: %s", publicID, res.Error.Message)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("destroy photo %s: unexpected result %q", publicID, res.Result)
	}
	return nil
}

// PublicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/q_auto/v1712/agenda/photos/c-1.jpg.
func PublicIDFromURL(url string) (string, error) {
	_, rest, ok := strings.Cut(url, "/upload/")
	if !ok || rest == "" {
		return "", errors.New("not a cloudinary upload url: " + url)
	}
	parts := strings.Split(rest, "/")

	// Skip transformations and the version segment that precede the id.
	start := 0
	for i, p := range parts {
		if isVersion(p) {
			start = i + 1
			break
		}
	}
	if start == 0 {
		for start < len(parts)-1 && isTransformation(parts[start]) {
			start++
		}
	}

	id := strings.Join(parts[start:], "/")
	id = strings.TrimSuffix(id, path.Ext(id))
	if id == "" {
		return "", errors.New("no public id in url: " + url)
	}
	return id, nil
}

var transformationParam = regexp.MustCompile(`^[a-z]{1,3}_[^,/]+$`)

func isTransformation(s string) bool {
	for _, p := range strings.Split(s, ",") {
		if !transformationParam.MatchString(p) {
			return false
		}
	}
	return true
}

func isVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
