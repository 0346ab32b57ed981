package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PostImageDir is the media subdirectory post images are stored in.
const PostImageDir = "posts"

var (
	// ErrNotAnImage is returned when an upload's content is not an image.
	ErrNotAnImage = errors.New("upload a valid image: the file is either not an image or corrupted")
	// ErrImageTooLarge is returned when an upload exceeds the configured size.
	ErrImageTooLarge = errors.New("image is too large")
)

// MediaStorage keeps uploaded files under Root and serves them from URL.
type MediaStorage struct {
	Root    string
	URL     string
	MaxSize int64
}

// SaveImage stores an uploaded image and returns its path relative to Root.
// Content is sniffed, the client supplied name and type are ignored.
func (m MediaStorage) SaveImage(fh *multipart.FileHeader) (string, error) {
	if m.MaxSize > 0 && fh.Size > m.MaxSize {
		return "", ErrImageTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil || !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotAnImage
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	dir := filepath.Join(m.Root, PostImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}
	name := uuid.NewString() + mt.Extension()
	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	var r io.Reader = src
	if m.MaxSize > 0 {
		r = io.LimitReader(src, m.MaxSize+1)
	}
	written, err := io.Copy(out, r)
	if err == nil && m.MaxSize > 0 && written > m.MaxSize {
		err = ErrImageTooLarge
	}
	if err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	return path.Join(PostImageDir, name), nil
}

// Delete removes a stored file; a missing file is not an error.
func (m MediaStorage) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	full, err := m.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL maps a stored relative path to the URL it is served from.
func (m MediaStorage) PublicURL(rel string) string {
	if rel == "" {
		return ""
	}
	return strings.TrimSuffix(m.URL, "/") + "/" + rel
}

func (m MediaStorage) resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("media path %q escapes media root", rel)
	}
	return filepath.Join(m.Root, clean), nil
}
