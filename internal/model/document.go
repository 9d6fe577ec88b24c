package model

import "time"

// PDFDocument is the stored metadata of an uploaded PDF.
// StoragePath is empty when the raw file was not archived in object storage.
type PDFDocument struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	StoragePath string    `json:"storage_path,omitempty"`
	Size        int64     `json:"size"`
	ChunksCount int       `json:"chunks_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
