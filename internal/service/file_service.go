package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/internal/progress"
)

// FileQueueInput is the DTO for queueing one uploaded document.
type FileQueueInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// FileService defines the document queue contract. The queue is held in
// memory in upload order; the document bytes live in the DocumentStore.
type FileService interface {
	Queue(ctx context.Context, input FileQueueInput) (*domain.QueuedFile, error)
	List(ctx context.Context) []domain.QueuedFile
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QueuedFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
}

type fileService struct {
	mu      sync.Mutex
	order   []uuid.UUID
	byID    map[uuid.UUID]*domain.QueuedFile
	storage port.DocumentStore
	raster  port.PageRasterizer
	tracker *progress.Tracker
	cfg     *config.FilesConfig
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	storage port.DocumentStore,
	raster port.PageRasterizer,
	tracker *progress.Tracker,
	cfg *config.FilesConfig,
) FileService {
	return &fileService{
		order:   nil,
		byID:    make(map[uuid.UUID]*domain.QueuedFile),
		storage: storage,
		raster:  raster,
		tracker: tracker,
		cfg:     cfg,
	}
}

// Queue validates one uploaded document and adds it to the processing
// queue. Only PDFs are accepted; a rejected file returns an error without
// affecting files already queued.
func (s *fileService) Queue(ctx context.Context, input FileQueueInput) (*domain.QueuedFile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	// Magic-byte check on top of the extension check.
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detectedType := http.DetectContentType(head)
	if _, ok := domain.AllowedContentTypes[detectedType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	pageCount, err := s.raster.PageCount(ctx, data)
	if err != nil {
		log.Printf("fileService.Queue: unreadable document %s: %v", input.Header.Filename, err)
		return nil, domain.ErrUnsupportedFileType
	}

	fileID := uuid.New()
	key := fmt.Sprintf("queue/%s/%s", fileID, input.Header.Filename)

	log.Printf("fileService.Queue: queueing %s (%d bytes, %d pages)",
		input.Header.Filename, len(data), pageCount)

	err = s.storage.Put(ctx, port.StoreInput{
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.AllowedFileTypes[domain.FileTypePDF],
		Size:        int64(len(data)),
	})
	if err != nil {
		log.Printf("fileService.Queue: storing %s failed: %v", input.Header.Filename, err)
		return nil, domain.ErrUploadFailed
	}

	file := &domain.QueuedFile{
		ID:          fileID,
		Name:        input.Header.Filename,
		Size:        int64(len(data)),
		ContentType: detectedType,
		PageCount:   pageCount,
		StorageKey:  key,
		Status:      domain.FileStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.order = append(s.order, fileID)
	s.byID[fileID] = file
	s.mu.Unlock()

	copied := *file
	return &copied, nil
}

// List returns the queue in upload order.
func (s *fileService) List(ctx context.Context) []domain.QueuedFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.QueuedFile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.byID[id])
	}
	return out
}

func (s *fileService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QueuedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

// Delete removes a file from the queue and from storage. Refused while a
// run is active: an in-flight task may still need the document bytes.
func (s *fileService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.tracker.Running() {
		return domain.ErrRunActive
	}

	s.mu.Lock()
	file, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}

	log.Printf("fileService.Delete: removing %s (%s)", file.Name, id)

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		log.Printf("fileService.Delete: deleting from storage: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	s.mu.Lock()
	delete(s.byID, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *fileService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	file.Status = status
	return nil
}
