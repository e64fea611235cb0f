package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

const uploadFailed = "Error uploading file. Please try again."

func parseID(args []string, u string) (int64, error) {
	if len(args) == 0 {
		return 0, usage(u)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", args[0])
	}
	return id, nil
}

func processedLabel(d models.Document) string {
	if d.Processed {
		return "processed"
	}
	return "processing"
}

// Documents lists the user's documents.
func (a *App) Documents(ctx context.Context, _ []string) error {
	docs, err := a.page().documents.Refetch(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		a.println("No documents yet. Upload a PDF with 'upload <path>'.")
		return nil
	}

	tw := newTable(a.out, "ID", "TITLE", "PAGES", "SIZE", "STATUS", "UPLOADED")
	for _, d := range docs {
		tw.row(d.ID, d.Title, d.PageCount, fmt.Sprintf("%.2f MB", d.FileSizeMB), processedLabel(d), d.UploadedAt.Format("2006-01-02"))
	}
	return tw.flush()
}

// Upload validates a local PDF and uploads it. The list is refreshed after
// a successful upload.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("upload <path>")
	}
	path := strings.Join(args, " ")

	a.println("Uploading...")
	doc, err := a.uploads.UploadFile(ctx, path)
	if err != nil {
		return &displayError{text: apiFieldMessage(err, "error", uploadFailed)}
	}

	a.printf("Uploaded %q (id %d, %s).\n", doc.Title, doc.ID, processedLabel(doc))
	if _, err := a.page().documents.Refetch(ctx); err != nil {
		a.log.Warn(ctx, "refresh documents after upload", "error", err)
	}
	return nil
}

func (a *App) ShowDocument(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}
	d, err := a.docs.Get(ctx, id)
	if err != nil {
		return err
	}

	a.printf("%s (id %d)\n", d.Title, d.ID)
	a.printf("Status:   %s\n", processedLabel(d))
	a.printf("Pages:    %d\n", d.PageCount)
	a.printf("Size:     %.2f MB\n", d.FileSizeMB)
	a.printf("Uploaded: %s\n", d.UploadedAt.Format("2006-01-02 15:04"))
	if len(d.Chunks) > 0 {
		a.printf("Excerpt (page %d):\n%s\n", d.Chunks[0].PageNumber, excerpt(d.Chunks[0].Content, 300))
	}
	return nil
}

func (a *App) DeleteDocument(ctx context.Context, args []string) error {
	id, err := parseID(args, "rmdoc <id>")
	if err != nil {
		return err
	}
	ok, err := confirm(a.reader, fmt.Sprintf("Delete document %d and its quizzes?", id), a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}
	if err := a.docs.Delete(ctx, id); err != nil {
		return err
	}
	a.println("Document deleted.")
	if _, err := a.page().documents.Refetch(ctx); err != nil {
		a.log.Warn(ctx, "refresh documents after delete", "error", err)
	}
	return nil
}

func (a *App) Reprocess(ctx context.Context, args []string) error {
	id, err := parseID(args, "reprocess <id>")
	if err != nil {
		return err
	}
	msg, err := a.docs.Reprocess(ctx, id)
	if err != nil {
		return err
	}
	a.println(msg.Message)
	return nil
}

// Search looks for text in processed documents, optionally limited to one
// document with --doc <id>.
func (a *App) Search(ctx context.Context, args []string) error {
	var req models.SearchRequest
	var words []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--doc" {
			id, err := parseID(args[i+1:], "search <query> [--doc <id>]")
			if err != nil {
				return err
			}
			req.DocumentID = &id
			i++
			continue
		}
		words = append(words, args[i])
	}
	req.Query = strings.Join(words, " ")
	if req.Query == "" {
		return usage("search <query> [--doc <id>]")
	}

	res, err := a.docs.Search(ctx, req)
	if err != nil {
		return err
	}
	if res.TotalResults == 0 {
		a.printf("No results for %q.\n", res.Query)
		return nil
	}
	a.printf("%d result(s) for %q:\n", res.TotalResults, res.Query)
	for _, hit := range res.Results {
		a.printf("\n[%s] score %.2f\n%s\n", hit.DocumentTitle, hit.Score, excerpt(hit.Content, 200))
	}
	return nil
}

func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
