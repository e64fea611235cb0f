package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/validation"
	"github.com/dmitrijs2005/pdflearn/internal/logging"
)

// sniffLen is how many leading bytes are used to detect the file type.
const sniffLen = 512

// DocumentUploader is the remote side of document upload.
type DocumentUploader interface {
	Upload(ctx context.Context, title, filename string, content io.Reader) (models.Document, error)
}

// DocumentService uploads PDF files from disk after checking them locally.
type DocumentService interface {
	// UploadFile validates the file at path and uploads it titled with its
	// base name. Validation errors are returned before any request is made.
	UploadFile(ctx context.Context, path string) (models.Document, error)
}

type documentService struct {
	api DocumentUploader
	log logging.Logger
}

func NewDocumentService(api DocumentUploader, log logging.Logger) DocumentService {
	if log == nil {
		log = logging.Nop()
	}
	return &documentService{api: api, log: log.With("component", "document_service")}
}

func (s *documentService) UploadFile(ctx context.Context, path string) (models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.Document{}, err
	}
	if info.IsDir() {
		return models.Document{}, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := validation.Upload(validation.DetectMIME(head[:n]), info.Size()); err != nil {
		return models.Document{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return models.Document{}, err
	}

	name := filepath.Base(path)
	doc, err := s.api.Upload(ctx, name, name, f)
	if err != nil {
		return models.Document{}, err
	}
	s.log.Info(ctx, "document uploaded", "id", doc.ID, "size", info.Size())
	return doc, nil
}
