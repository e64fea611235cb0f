package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

type QuizzesAPI struct {
	c *HTTPClient
}

func NewQuizzesAPI(c *HTTPClient) *QuizzesAPI { return &QuizzesAPI{c: c} }

func (q *QuizzesAPI) List(ctx context.Context) ([]models.Quiz, error) {
	return call[[]models.Quiz](ctx, q.c, http.MethodGet, "/quizzes/quizzes/", nil)
}

func (q *QuizzesAPI) Get(ctx context.Context, id int64) (models.Quiz, error) {
	return call[models.Quiz](ctx, q.c, http.MethodGet, fmt.Sprintf("/quizzes/quizzes/%d/", id), nil)
}

func (q *QuizzesAPI) Generate(ctx context.Context, req models.GenerateQuizRequest) (models.Quiz, error) {
	return call[models.Quiz](ctx, q.c, http.MethodPost, "/quizzes/quizzes/generate/", req)
}

func (q *QuizzesAPI) CreateAttempt(ctx context.Context, quizID int64) (models.Attempt, error) {
	return call[models.Attempt](ctx, q.c, http.MethodPost, "/quizzes/attempts/", models.CreateAttemptRequest{QuizID: quizID})
}

func (q *QuizzesAPI) SubmitAttempt(ctx context.Context, attemptID int64, req models.SubmitAttemptRequest) (models.SubmitResult, error) {
	return call[models.SubmitResult](ctx, q.c, http.MethodPost, fmt.Sprintf("/quizzes/attempts/%d/submit/", attemptID), req)
}

func (q *QuizzesAPI) Attempts(ctx context.Context) ([]models.Attempt, error) {
	return call[[]models.Attempt](ctx, q.c, http.MethodGet, "/quizzes/attempts/", nil)
}

func (q *QuizzesAPI) Attempt(ctx context.Context, id int64) (models.Attempt, error) {
	return call[models.Attempt](ctx, q.c, http.MethodGet, fmt.Sprintf("/quizzes/attempts/%d/", id), nil)
}

func (q *QuizzesAPI) Stats(ctx context.Context) (models.QuizStats, error) {
	return call[models.QuizStats](ctx, q.c, http.MethodGet, "/quizzes/attempts/stats/", nil)
}
