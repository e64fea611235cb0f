package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

type DocumentsAPI struct {
	c *HTTPClient
}

func NewDocumentsAPI(c *HTTPClient) *DocumentsAPI { return &DocumentsAPI{c: c} }

func (d *DocumentsAPI) List(ctx context.Context) ([]models.Document, error) {
	return call[[]models.Document](ctx, d.c, http.MethodGet, "/documents/", nil)
}

func (d *DocumentsAPI) Get(ctx context.Context, id int64) (models.Document, error) {
	return call[models.Document](ctx, d.c, http.MethodGet, fmt.Sprintf("/documents/%d/", id), nil)
}

// Upload sends the PDF as multipart form data with "file" and "title" parts.
func (d *DocumentsAPI) Upload(ctx context.Context, title, filename string, content io.Reader) (models.Document, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("title", title); err != nil {
		return models.Document{}, err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(h)
	if err != nil {
		return models.Document{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return models.Document{}, fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.Document{}, err
	}

	body := RawBody{ContentType: w.FormDataContentType(), Reader: &buf}
	return call[models.Document](ctx, d.c, http.MethodPost, "/documents/", body)
}

func (d *DocumentsAPI) Delete(ctx context.Context, id int64) error {
	_, err := d.c.Do(ctx, http.MethodDelete, fmt.Sprintf("/documents/%d/", id), nil)
	return err
}

func (d *DocumentsAPI) Search(ctx context.Context, req models.SearchRequest) (models.SearchResult, error) {
	return call[models.SearchResult](ctx, d.c, http.MethodPost, "/documents/search/", req)
}

func (d *DocumentsAPI) Reprocess(ctx context.Context, id int64) (models.Message, error) {
	return call[models.Message](ctx, d.c, http.MethodPost, fmt.Sprintf("/documents/%d/reprocess/", id), nil)
}
