package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

type ProgressAPI struct {
	c *HTTPClient
}

func NewProgressAPI(c *HTTPClient) *ProgressAPI { return &ProgressAPI{c: c} }

func (p *ProgressAPI) Progress(ctx context.Context) ([]models.DocumentProgress, error) {
	return call[[]models.DocumentProgress](ctx, p.c, http.MethodGet, "/progress/progress/", nil)
}

func (p *ProgressAPI) Stats(ctx context.Context) (models.ProgressStats, error) {
	return call[models.ProgressStats](ctx, p.c, http.MethodGet, "/progress/progress/stats/", nil)
}

func (p *ProgressAPI) Overview(ctx context.Context) (models.ProgressOverview, error) {
	return call[models.ProgressOverview](ctx, p.c, http.MethodGet, "/progress/progress/overview/", nil)
}

func (p *ProgressAPI) Sessions(ctx context.Context) ([]models.StudySession, error) {
	return call[[]models.StudySession](ctx, p.c, http.MethodGet, "/progress/sessions/", nil)
}

func (p *ProgressAPI) RecentSessions(ctx context.Context) ([]models.StudySession, error) {
	return call[[]models.StudySession](ctx, p.c, http.MethodGet, "/progress/sessions/recent/", nil)
}

func (p *ProgressAPI) StartSession(ctx context.Context, req models.StartSessionRequest) (models.StudySession, error) {
	return call[models.StudySession](ctx, p.c, http.MethodPost, "/progress/sessions/start/", req)
}

func (p *ProgressAPI) EndSession(ctx context.Context, id int64) (models.StudySession, error) {
	return call[models.StudySession](ctx, p.c, http.MethodPost, fmt.Sprintf("/progress/sessions/%d/end/", id), nil)
}

func (p *ProgressAPI) Goals(ctx context.Context) ([]models.LearningGoal, error) {
	return call[[]models.LearningGoal](ctx, p.c, http.MethodGet, "/progress/goals/", nil)
}

func (p *ProgressAPI) CreateGoal(ctx context.Context, req models.GoalRequest) (models.LearningGoal, error) {
	return call[models.LearningGoal](ctx, p.c, http.MethodPost, "/progress/goals/", req)
}

func (p *ProgressAPI) UpdateGoal(ctx context.Context, id int64, patch models.GoalPatch) (models.LearningGoal, error) {
	return call[models.LearningGoal](ctx, p.c, http.MethodPatch, fmt.Sprintf("/progress/goals/%d/", id), patch)
}

func (p *ProgressAPI) UpdateGoalProgress(ctx context.Context, id int64, progress float64) (models.LearningGoal, error) {
	return call[models.LearningGoal](ctx, p.c, http.MethodPost, fmt.Sprintf("/progress/goals/%d/update_progress/", id), models.GoalProgressRequest{Progress: progress})
}
