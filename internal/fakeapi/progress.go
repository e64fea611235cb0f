package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

const recentSessionsLimit = 10

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listProgress(userIDFromContext(r.Context())))
}

func (s *Server) progressStats(w http.ResponseWriter, r *http.Request) {
	owner := userIDFromContext(r.Context())
	progress := s.store.listProgress(owner)
	attempts := s.store.listAttempts(owner)

	stats := models.ProgressStats{
		TotalDocuments: len(progress),
		TotalQuizzes:   len(attempts),
		DailyStats:     map[string]models.DailyStats{},
	}
	correct := 0
	for _, p := range progress {
		stats.TotalQuestions += p.TotalQuestionsAttempted
		correct += p.TotalCorrectAnswers
	}
	stats.OverallAccuracy = models.Percentage(correct, stats.TotalQuestions)

	now := s.now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	for _, ss := range s.store.listSessions(owner) {
		if ss.StartTime.After(weekAgo) {
			stats.RecentSessions++
		}
	}

	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		var ds models.DailyStats
		sum := 0
		for _, a := range attempts {
			if a.CompletedAt != nil && a.CompletedAt.UTC().Format("2006-01-02") == day {
				ds.Quizzes++
				sum += a.Score
			}
		}
		if ds.Quizzes > 0 {
			ds.AverageScore = round2(float64(sum) / float64(ds.Quizzes))
		}
		stats.DailyStats[day] = ds
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) progressOverview(w http.ResponseWriter, r *http.Request) {
	progress := s.store.listProgress(userIDFromContext(r.Context()))

	ov := models.ProgressOverview{ProgressData: progress}
	ov.Summary.TotalDocuments = len(progress)
	sumAvg := 0.0
	for _, p := range progress {
		ov.Summary.TotalQuizzes += p.TotalQuizzesTaken
		ov.Summary.TotalQuestions += p.TotalQuestionsAttempted
		sumAvg += p.AverageScore
	}
	if len(progress) > 0 {
		ov.Summary.OverallAccuracy = round2(sumAvg / float64(len(progress)))
	}

	writeJSON(w, http.StatusOK, ov)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listSessions(userIDFromContext(r.Context())))
}

func (s *Server) recentSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.listSessions(userIDFromContext(r.Context()))
	if len(sessions) > recentSessionsLimit {
		sessions = sessions[:recentSessionsLimit]
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.SessionType == "" {
		req.SessionType = models.SessionTypeQuiz
	}

	owner := userIDFromContext(r.Context())
	doc, err := s.store.document(owner, req.DocumentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}

	ss := s.store.addSession(owner, models.StudySession{
		Document:      doc.ID,
		DocumentTitle: doc.Title,
		StartTime:     s.now().UTC(),
		SessionType:   req.SessionType,
		QuizType:      req.QuizType,
	})
	writeJSON(w, http.StatusOK, ss)
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	end := s.now().UTC()
	ss, err := s.store.updateSession(userIDFromContext(r.Context()), id, func(ss *models.StudySession) {
		ss.EndTime = &end
		ss.TimeSpent = int(end.Sub(ss.StartTime) / time.Second)
		ss.DurationMinutes = round2(float64(ss.TimeSpent) / 60)
		ss.Accuracy = models.SessionAccuracy(*ss)
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (s *Server) goalView(g models.LearningGoal) models.LearningGoal {
	g.DaysRemaining = max(0, g.DaysUntil(s.now()))
	if g.TargetScore > 0 {
		g.ProgressPercentage = round2(g.Progress())
	}
	return g
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	goals := s.store.listGoals(userIDFromContext(r.Context()))
	for i := range goals {
		goals[i] = s.goalView(goals[i])
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req models.GoalRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusBadRequest, fieldError("title", "This field is required."))
		return
	}
	if req.TargetDate.IsZero() {
		writeJSON(w, http.StatusBadRequest, fieldError("target_date", "This field is required."))
		return
	}
	if req.TargetScore == 0 {
		req.TargetScore = models.DefaultTargetScore
	}

	owner := userIDFromContext(r.Context())
	g := models.LearningGoal{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		TargetScore: req.TargetScore,
		CreatedAt:   s.now().UTC(),
	}
	if req.Document != nil {
		doc, err := s.store.document(owner, *req.Document)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, fieldError("document", "Invalid pk - object does not exist."))
			return
		}
		g.Document = &doc.ID
		g.DocumentTitle = &doc.Title
	}

	writeJSON(w, http.StatusCreated, s.goalView(s.store.addGoal(owner, g)))
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	var patch models.GoalPatch
	if !decodeJSON(r, &patch) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	g, err := s.store.updateGoal(userIDFromContext(r.Context()), id, func(g *models.LearningGoal) {
		if patch.Title != nil {
			g.Title = *patch.Title
		}
		if patch.Description != nil {
			g.Description = *patch.Description
		}
		if patch.TargetDate != nil {
			g.TargetDate = *patch.TargetDate
		}
		if patch.TargetScore != nil {
			g.TargetScore = *patch.TargetScore
		}
		if patch.Completed != nil {
			g.Completed = *patch.Completed
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.goalView(g))
}

func (s *Server) updateGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	var req models.GoalProgressRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	g, err := s.store.updateGoal(userIDFromContext(r.Context()), id, func(g *models.LearningGoal) {
		g.CurrentProgress = min(req.Progress, g.TargetScore)
		if g.CurrentProgress >= g.TargetScore {
			g.Completed = true
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, s.goalView(g))
}
