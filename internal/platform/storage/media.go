package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	ProfilePictureDir = "profile_pictures"
	// MaxImageBytes caps a single profile picture upload.
	MaxImageBytes = 5 << 20
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var ErrInvalidImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

// MediaStore keeps uploaded files under a root directory and serves them below a public URL prefix.
type MediaStore struct {
	root    string
	baseURL string
}

func NewMediaStore(root, baseURL string) (*MediaStore, error) {
	if err := os.MkdirAll(filepath.Join(root, ProfilePictureDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating media root: %w", err)
	}
	if !strings.HasPrefix(baseURL, "/") {
		baseURL = "/" + baseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &MediaStore{root: root, baseURL: baseURL}, nil
}

// ImageExtension sniffs data and returns the canonical extension for supported image types.
func ImageExtension(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrInvalidImage
	}
	ext, ok := allowedImageTypes[http.DetectContentType(data)]
	if !ok {
		return "", ErrInvalidImage
	}
	return ext, nil
}

// SaveProfilePicture writes data and returns its path relative to the media root.
func (s *MediaStore) SaveProfilePicture(ctx context.Context, username, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext, err := ImageExtension(data)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	name := slug.Make(base)
	if name == "" || name == "." {
		name = slug.Make(username)
	}
	if name == "" {
		name = "picture"
	}
	rel := path.Join(ProfilePictureDir, fmt.Sprintf("%s-%s%s", name, uuid.NewString()[:8], ext))

	if err := os.WriteFile(filepath.Join(s.root, filepath.FromSlash(rel)), data, 0o644); err != nil {
		return "", fmt.Errorf("MediaStore.SaveProfilePicture: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file; a missing file is not an error.
func (s *MediaStore) Delete(_ context.Context, rel string) error {
	clean := path.Clean("/" + rel)
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("MediaStore.Delete: %w", err)
	}
	return nil
}

// URL maps a stored relative path to its public URL.
func (s *MediaStore) URL(rel string) string {
	return s.baseURL + strings.TrimPrefix(rel, "/")
}

func (s *MediaStore) BaseURL() string {
	return s.baseURL
}

// Handler serves stored files below BaseURL. Directories are never listed.
func (s *MediaStore) Handler() http.Handler {
	return http.StripPrefix(strings.TrimSuffix(s.baseURL, "/"), http.FileServer(filesOnly{http.Dir(s.root)}))
}

type filesOnly struct {
	http.FileSystem
}

func (fs filesOnly) Open(name string) (http.File, error) {
	f, err := fs.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
