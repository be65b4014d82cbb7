package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/lexora/lexora/internal/blob"
	"github.com/lexora/lexora/internal/models"
	"github.com/lexora/lexora/internal/store"
)

// DocumentService pairs document metadata rows with their blobs. The two
// writes are not transactional: upload stores the blob first and removes
// it again if the row insert fails, while delete removes the row first
// and reports a blob failure to the caller instead of rolling back.
type DocumentService struct {
	store store.Store
	blobs blob.Store
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(st store.Store, blobs blob.Store) *DocumentService {
	return &DocumentService{store: st, blobs: blobs}
}

// Upload stores the file under <owner>/<unix-ms>_<filename> and inserts
// the metadata row referencing that key.
func (s *DocumentService) Upload(ctx context.Context, owner, filename, contentType string, r io.Reader) (store.Record, error) {
	name := path.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == "/" {
		name = "upload"
	}
	key := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)

	info, err := s.blobs.Put(ctx, owner, key, r)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	rec, err := s.store.Create(ctx, owner, string(models.Documents), store.Record{
		"name": name,
		"type": contentType,
		"path": key,
		"size": info.Size,
	})
	if err != nil {
		// The row never existed, so the blob must not linger.
		_ = s.blobs.Delete(ctx, owner, key)
		return nil, err
	}
	return rec, nil
}

// Open resolves the metadata row and returns a reader over its blob.
func (s *DocumentService) Open(ctx context.Context, owner, id string) (io.ReadCloser, store.Record, error) {
	rec, err := s.store.GetByID(ctx, owner, string(models.Documents), id)
	if err != nil {
		return nil, nil, err
	}
	key, _ := rec["path"].(string)
	reader, _, err := s.blobs.Open(ctx, owner, key)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return reader, rec, nil
}

// URL returns the download location for a document id. Blob bytes are
// only ever served through the authenticated download endpoint.
func (s *DocumentService) URL(id string) string {
	return "/api/documents/" + id + "/download"
}

// Delete removes the metadata row and then the blob. The returned
// blobErr reports a blob that survived its row; the row deletion is not
// rolled back in that case.
func (s *DocumentService) Delete(ctx context.Context, owner, id string) (blobErr error, err error) {
	rec, err := s.store.GetByID(ctx, owner, string(models.Documents), id)
	if err != nil {
		return nil, err
	}
	key, _ := rec["path"].(string)

	if err := s.store.Delete(ctx, owner, string(models.Documents), id); err != nil {
		return nil, err
	}
	if key != "" {
		if err := s.blobs.Delete(ctx, owner, key); err != nil {
			return err, nil
		}
	}
	return nil, nil
}
