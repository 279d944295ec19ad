package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/audio-repo/internal/model"
	"github.com/sakif/audio-repo/internal/repository"
)

// AudioDB implements repository.AudioRepository on the shared pool.
type AudioDB struct {
	conn *sql.DB
}

var _ repository.AudioRepository = (*AudioDB)(nil)

// Create inserts a new audio file record and fills in the generated ID
// and creation timestamp. The bytes themselves live on disk; this row
// only records ownership and location.
func (db *AudioDB) Create(ctx context.Context, file *model.AudioFile) error {
	file.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO audio_files (filename, storage_path, owner_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		file.Filename,
		file.StoragePath,
		file.OwnerID,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting audio file %q: %w", file.Filename, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted audio file id: %w", err)
	}
	file.ID = id

	return nil
}

// ListByOwner returns all audio file records owned by ownerID, in
// insertion order. An owner with no files gets an empty slice, not nil.
func (db *AudioDB) ListByOwner(ctx context.Context, ownerID int64) ([]model.AudioFile, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, filename, storage_path, owner_id, created_at
		 FROM audio_files WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing audio files for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	files := []model.AudioFile{}
	for rows.Next() {
		var f model.AudioFile
		if err := rows.Scan(&f.ID, &f.Filename, &f.StoragePath, &f.OwnerID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning audio file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating audio file rows: %w", err)
	}

	return files, nil
}
