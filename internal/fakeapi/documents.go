package fakeapi

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

const chunkSize = 500

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listDocuments(userIDFromContext(r.Context())))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	doc, err := s.store.document(userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	owner := userIDFromContext(r.Context())
	if s.store.countDocuments(owner) >= maxDocumentsPerUser {
		writeError(w, http.StatusBadRequest, "Document upload limit reached. Maximum 50 documents allowed.")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, fieldError("file", "No file was submitted."))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		writeError(w, http.StatusBadRequest, "Only PDF files are allowed.")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	doc := models.Document{
		Title:        title,
		DocumentType: "pdf",
		File:         "/media/documents/" + filepath.Base(header.Filename),
		UploadedAt:   s.now().UTC(),
		FileSize:     int64(len(data)),
		FileSizeMB:   roundMB(int64(len(data))),
	}
	if s.autoProcess {
		process(&doc, data)
	}

	writeJSON(w, http.StatusCreated, s.store.addDocument(owner, doc))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok || s.store.deleteDocument(userIDFromContext(r.Context()), id) != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reprocessDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	_, err := s.store.updateDocument(userIDFromContext(r.Context()), id, func(d *models.Document) {
		text := documentText(d)
		d.Processed = false
		d.Chunks = nil
		if s.autoProcess {
			process(d, []byte(text))
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, models.Message{Message: "Document reprocessing started"})
}

func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	var docs []models.Document
	for _, d := range s.store.listDocuments(userIDFromContext(r.Context())) {
		if !d.Processed {
			continue
		}
		if req.DocumentID != nil && d.ID != *req.DocumentID {
			continue
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		writeError(w, http.StatusNotFound, "No processed documents found")
		return
	}

	needle := strings.ToLower(query)
	hits := make([]models.SearchHit, 0)
	for _, d := range docs {
		for _, c := range d.Chunks {
			n := strings.Count(strings.ToLower(c.Content), needle)
			if n == 0 {
				continue
			}
			hits = append(hits, models.SearchHit{
				DocumentID:    d.ID,
				DocumentTitle: d.Title,
				Content:       c.Content,
				Score:         float64(n),
			})
		}
	}

	writeJSON(w, http.StatusOK, models.SearchResult{Query: query, Results: hits, TotalResults: len(hits)})
}

// AddDocument stores a document for username with text as its extracted
// content, bypassing upload.
func (s *Server) AddDocument(username, title, text string, processed bool) (models.Document, error) {
	acc, err := s.store.accountByUsername(username)
	if err != nil {
		return models.Document{}, err
	}
	doc := models.Document{
		Title:        title,
		DocumentType: "pdf",
		File:         "/media/documents/" + title + ".pdf",
		UploadedAt:   s.now().UTC(),
		FileSize:     int64(len(text)),
		FileSizeMB:   roundMB(int64(len(text))),
	}
	if processed {
		process(&doc, []byte(text))
	}
	return s.store.addDocument(acc.user.ID, doc), nil
}

// Process marks a pending document as processed.
func (s *Server) Process(username string, id int64) error {
	acc, err := s.store.accountByUsername(username)
	if err != nil {
		return err
	}
	_, err = s.store.updateDocument(acc.user.ID, id, func(d *models.Document) {
		if !d.Processed {
			process(d, []byte(documentText(d)))
		}
	})
	return err
}

func documentText(d *models.Document) string {
	parts := make([]string, 0, len(d.Chunks))
	for _, c := range d.Chunks {
		parts = append(parts, c.Content)
	}
	if len(parts) == 0 {
		return d.Title
	}
	return strings.Join(parts, "")
}

func process(d *models.Document, data []byte) {
	text := printableText(data)
	d.Chunks = nil
	for i := 0; len(text) > 0; i++ {
		n := min(chunkSize, len(text))
		d.Chunks = append(d.Chunks, models.DocumentChunk{
			Content:    text[:n],
			ChunkIndex: i,
			PageNumber: i + 1,
		})
		text = text[n:]
	}
	d.PageCount = max(1, bytes.Count(data, []byte("/Type /Page"))-bytes.Count(data, []byte("/Type /Pages")))
	d.Processed = true
}

// printableText keeps runs of at least four printable characters.
func printableText(data []byte) string {
	var out, run strings.Builder
	flush := func() {
		if run.Len() >= 4 {
			if out.Len() > 0 {
				out.WriteByte(' ')
			}
			out.WriteString(strings.TrimSpace(run.String()))
		}
		run.Reset()
	}
	for _, b := range data {
		if b < unicode.MaxASCII && (unicode.IsPrint(rune(b)) || b == ' ') {
			run.WriteByte(b)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}

func roundMB(size int64) float64 {
	return float64(size*100/(1024*1024)) / 100
}
