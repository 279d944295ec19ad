package model

import "time"

// AudioFile represents one uploaded audio file owned by a user.
//
// Filename is the name the caller chose (or the upload's original base
// name); StoragePath is where the bytes actually live on disk. The two
// differ because the stored name always carries the original extension.
//
// Records are immutable after creation; there is no update or delete
// path for audio files.
type AudioFile struct {
	ID          int64     `json:"id"          db:"id"`
	Filename    string    `json:"filename"    db:"filename"`
	StoragePath string    `json:"storagePath" db:"storage_path"`
	OwnerID     int64     `json:"ownerId"     db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
