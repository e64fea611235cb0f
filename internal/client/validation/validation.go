// Package validation runs the client-side checks that must pass before a
// request is sent. Errors carry the exact text shown to the user.
package validation

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

const (
	PDFMimeType       = "application/pdf"
	MaxUploadBytes    = 10 * 1024 * 1024
	MinPasswordLength = 6
)

// Message is a validation failure whose text is shown to the user as is.
type Message string

func (m Message) Error() string { return string(m) }

const (
	ErrNotPDF           Message = "Please upload only PDF files"
	ErrFileTooLarge     Message = "File size must be less than 10MB"
	ErrPasswordMismatch Message = "Passwords do not match"
	ErrPasswordTooShort Message = "Password must be at least 6 characters long"
	ErrUsernameRequired Message = "Username is required"
	ErrNoDocument       Message = "Please select a document"
	ErrNotProcessed     Message = "Document is still processing"
	ErrTitleRequired    Message = "Title is required"
	ErrTargetScore      Message = "Target score must be between 1 and 100"
)

var ErrQuestionsCount = Message(fmt.Sprintf("Number of questions must be between %d and %d", models.MinQuestionsCount, models.MaxQuestionsCount))

// DetectMIME sniffs the content type from the first bytes of a file.
func DetectMIME(head []byte) string {
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Upload checks the MIME type and size of a file before it is uploaded.
func Upload(mimeType string, size int64) error {
	if mimeType != PDFMimeType {
		return ErrNotPDF
	}
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Registration checks the sign-up form in the order the form reports errors.
func Registration(r models.Registration) error {
	if strings.TrimSpace(r.Username) == "" {
		return ErrUsernameRequired
	}
	if r.Password != r.PasswordConfirm {
		return ErrPasswordMismatch
	}
	if len([]rune(r.Password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// GenerateQuiz gates the quiz generator: the document must be chosen and
// processed and the question count in range.
func GenerateQuiz(doc *models.Document, req models.GenerateQuizRequest) error {
	if doc == nil {
		return ErrNoDocument
	}
	if !doc.Processed {
		return ErrNotProcessed
	}
	if req.QuestionsCount < models.MinQuestionsCount || req.QuestionsCount > models.MaxQuestionsCount {
		return ErrQuestionsCount
	}
	if _, err := models.ParseQuizType(string(req.QuizType)); err != nil {
		return err
	}
	if _, err := models.ParseDifficulty(string(req.Difficulty)); err != nil {
		return err
	}
	return nil
}

func Goal(g models.GoalRequest) error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrTitleRequired
	}
	if g.TargetScore < 1 || g.TargetScore > 100 {
		return ErrTargetScore
	}
	return nil
}
