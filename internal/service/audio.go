package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sakif/audio-repo/internal/apperror"
	"github.com/sakif/audio-repo/internal/model"
	"github.com/sakif/audio-repo/internal/repository"
	"github.com/sakif/audio-repo/internal/storage"
)

// allowedExtensions is the upload allow-list, matched case-insensitively
// against the original filename's extension. Content is not inspected;
// the extension is the only gate.
var allowedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
}

// AudioService handles audio uploads and per-owner listing.
type AudioService struct {
	files  repository.AudioRepository
	blobs  storage.BlobStore
	logger *slog.Logger
}

// NewAudioService creates an AudioService.
func NewAudioService(files repository.AudioRepository, blobs storage.BlobStore, logger *slog.Logger) *AudioService {
	return &AudioService{
		files:  files,
		blobs:  blobs,
		logger: logger,
	}
}

// Upload validates, stores and records one uploaded audio file.
//
// The recorded name is desiredName if given, else the original's full
// base name, and the original extension is appended on disk either way.
// A name that already ends in an extension produces a double one: an
// upload of "track.mp3" with no desired name records "track.mp3" and
// stores "track.mp3.mp3". Existing clients depend on that resolution,
// so it stays. Equal stored names overwrite each other on disk.
//
// The bytes hit the disk before the database row is written: a failure
// between the two leaves at worst an orphaned file, never a record that
// points at bytes which were not stored. Storage and database failures
// are logged with their cause; the caller gets a generic internal error.
func (s *AudioService) Upload(ctx context.Context, r io.Reader, originalFilename, desiredName string, ownerID int64) (*model.AudioFile, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if !allowedExtensions[ext] {
		return nil, apperror.ValidationFailed("file",
			"only .mp3, .wav, and .ogg files are supported")
	}

	name := strings.TrimSpace(desiredName)
	if name == "" {
		// Extension intact; the append below doubles it.
		name = filepath.Base(originalFilename)
	}

	storedName := name + ext

	path, err := s.blobs.Save(storedName, r)
	if err != nil {
		s.logger.Error("audio upload: storing bytes failed",
			slog.String("storedName", storedName),
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/audio: file saving failed")
	}

	file := &model.AudioFile{
		Filename:    name,
		StoragePath: path,
		OwnerID:     ownerID,
	}
	if err := s.files.Create(ctx, file); err != nil {
		// The blob is already on disk; it stays behind as an orphan.
		s.logger.Error("audio upload: recording file failed, blob orphaned",
			slog.String("path", path),
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/audio: recording upload failed")
	}

	s.logger.Info("audio file uploaded",
		slog.Int64("fileID", file.ID),
		slog.String("filename", file.Filename),
		slog.Int64("ownerID", ownerID),
	)

	return file, nil
}

// ListForOwner returns the caller's audio file records in upload order.
func (s *AudioService) ListForOwner(ctx context.Context, ownerID int64) ([]model.AudioFile, error) {
	files, err := s.files.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("listing audio files failed",
			slog.Int64("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/audio: listing files failed")
	}
	return files, nil
}
