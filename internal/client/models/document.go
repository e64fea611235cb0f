package models

import "time"

type DocumentChunk struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
	PageNumber int    `json:"page_number"`
}

type Document struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	DocumentType string          `json:"document_type"`
	File         string          `json:"file"`
	UploadedAt   time.Time       `json:"uploaded_at"`
	Processed    bool            `json:"processed"`
	FileSize     int64           `json:"file_size"`
	FileSizeMB   float64         `json:"file_size_mb"`
	PageCount    int             `json:"page_count"`
	Chunks       []DocumentChunk `json:"chunks,omitempty"`
}

// ProcessedDocuments filters docs down to those eligible for quiz generation.
func ProcessedDocuments(docs []Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Processed {
			out = append(out, d)
		}
	}
	return out
}

type SearchRequest struct {
	Query      string `json:"query"`
	DocumentID *int64 `json:"document_id,omitempty"`
}

type SearchHit struct {
	DocumentID    int64   `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
}

type SearchResult struct {
	Query        string      `json:"query"`
	Results      []SearchHit `json:"results"`
	TotalResults int         `json:"total_results"`
}

// Message is the generic {"message": "..."} acknowledgement.
type Message struct {
	Message string `json:"message"`
}
