// Package storage provides ImageStore implementations.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Skryldev/texture-import/core"
	apperrors "github.com/Skryldev/texture-import/errors"
)

// ErrNotFound is returned by Get for a key that was never stored.
var ErrNotFound = errors.New("key not found")

const (
	rawExt  = ".raw"
	zstExt  = ".raw.zst"
	metaExt = ".json"
)

// sidecar is the JSON header written next to every raw dump.
type sidecar struct {
	Width               int    `json:"width"`
	Height              int    `json:"height"`
	NumMips             int    `json:"num_mips"`
	Format              uint8  `json:"format"`
	FormatName          string `json:"format_name"`
	SRGB                bool   `json:"srgb"`
	CompressionSettings uint8  `json:"compression_settings"`
	RawCompression      uint8  `json:"raw_compression"`
	Size                int    `json:"size"`
	Zstd                bool   `json:"zstd"`
}

// Local stores imported images on the local filesystem as a raw pixel dump
// plus a JSON sidecar. With compression enabled the dump is zstd-framed.
type Local struct {
	rootDir     string
	permissions os.FileMode
	compress    bool
}

// NewLocal creates a Local storage adapter rooted at dir.
func NewLocal(dir string, perm os.FileMode, compress bool) (*Local, error) {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: mkdir %s: %w", dir, err)
	}
	return &Local{rootDir: dir, permissions: perm, compress: compress}, nil
}

// basePath maps a key to a path under the root without its extension.
// Bucket maps to a subdirectory; Path is the file stem.
func (l *Local) basePath(key core.StorageKey) string {
	// rooting at "/" before Clean drops any leading ".." segments
	return filepath.Join(l.rootDir, filepath.Clean("/"+key.Bucket), filepath.Clean("/"+key.Path))
}

func (l *Local) Put(ctx context.Context, key core.StorageKey, img *core.ImportedImage) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put", err)
	}
	if img == nil {
		return apperrors.New(apperrors.CategoryInput, "local.put", apperrors.ErrEmptyInput)
	}

	base := l.basePath(key)
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.mkdir", err)
	}

	payload, ext := img.RawData, rawExt
	if l.compress {
		payload, ext = compress(img.RawData), zstExt
	}
	if err := os.WriteFile(base+ext, payload, l.permissions); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.write", err)
	}
	// a stale dump with the other extension would shadow this one on Get
	if other := otherExt(ext); other != "" {
		_ = os.Remove(base + other)
	}

	meta, err := json.MarshalIndent(sidecar{
		Width:               img.Width,
		Height:              img.Height,
		NumMips:             img.NumMips,
		Format:              uint8(img.Format),
		FormatName:          img.Format.String(),
		SRGB:                img.SRGB,
		CompressionSettings: uint8(img.CompressionSettings),
		RawCompression:      uint8(img.RawDataCompression),
		Size:                len(img.RawData),
		Zstd:                l.compress,
	}, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.meta", err)
	}
	if err := os.WriteFile(base+metaExt, meta, l.permissions); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.put.meta", err)
	}
	return nil
}

func (l *Local) Get(ctx context.Context, key core.StorageKey) (*core.ImportedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get", err)
	}
	base := l.basePath(key)

	rawMeta, err := os.ReadFile(base + metaExt)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.New(apperrors.CategoryIO, "local.get", fmt.Errorf("%w: %v", ErrNotFound, key))
		}
		return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get.meta", err)
	}
	var meta sidecar
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get.meta", err)
	}

	ext := rawExt
	if meta.Zstd {
		ext = zstExt
	}
	payload, err := os.ReadFile(base + ext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get.read", err)
	}
	if meta.Zstd {
		if payload, err = decompress(payload); err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryIO, "local.get.zstd", err)
		}
	}
	if len(payload) != meta.Size {
		return nil, apperrors.New(apperrors.CategoryIO, "local.get",
			fmt.Errorf("payload is %d bytes, sidecar says %d", len(payload), meta.Size))
	}

	return &core.ImportedImage{
		RawData:             payload,
		Width:               meta.Width,
		Height:              meta.Height,
		NumMips:             meta.NumMips,
		Format:              core.PixelFormat(meta.Format),
		SRGB:                meta.SRGB,
		CompressionSettings: core.CompressionSettings(meta.CompressionSettings),
		RawDataCompression:  core.RawCompression(meta.RawCompression),
	}, nil
}

func (l *Local) Delete(ctx context.Context, key core.StorageKey) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryIO, "local.delete", err)
	}
	base := l.basePath(key)
	for _, ext := range []string{rawExt, zstExt, metaExt} {
		if err := os.Remove(base + ext); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperrors.Wrap(apperrors.CategoryIO, "local.delete", err)
		}
	}
	return nil
}

func (l *Local) Exists(ctx context.Context, key core.StorageKey) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperrors.Wrap(apperrors.CategoryIO, "local.exists", err)
	}
	_, err := os.Stat(l.basePath(key) + metaExt)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CategoryIO, "local.exists.stat", err)
}

func otherExt(ext string) string {
	switch ext {
	case rawExt:
		return zstExt
	case zstExt:
		return rawExt
	}
	return ""
}

var _ core.ImageStore = (*Local)(nil)
