package fakeapi

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

var optionLetters = []string{"A", "B", "C", "D"}

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listQuizzes(userIDFromContext(r.Context())))
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	q, err := s.store.quiz(userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateQuizRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.QuestionsCount == 0 {
		req.QuestionsCount = models.DefaultQuestionsCount
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DefaultDifficulty
	}
	if _, err := models.ParseQuizType(string(req.QuizType)); err != nil {
		writeJSON(w, http.StatusBadRequest, fieldError("quiz_type", fmt.Sprintf("%q is not a valid choice.", req.QuizType)))
		return
	}
	if req.QuestionsCount < models.MinQuestionsCount || req.QuestionsCount > models.MaxQuestionsCount {
		writeJSON(w, http.StatusBadRequest, fieldError("questions_count", "Ensure this value is between 1 and 20."))
		return
	}

	doc, err := s.store.document(userIDFromContext(r.Context()), req.DocumentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Document not found")
		return
	}
	if !doc.Processed || len(doc.Chunks) == 0 {
		writeError(w, http.StatusBadRequest, "Document is not processed yet")
		return
	}

	quiz := models.Quiz{
		Document:      doc.ID,
		DocumentTitle: doc.Title,
		QuizType:      req.QuizType,
		Title:         fmt.Sprintf("%s - %s Quiz", doc.Title, strings.ToUpper(string(req.QuizType))),
		CreatedAt:     s.now().UTC(),
		Difficulty:    req.Difficulty,
	}
	for i := 0; i < req.QuestionsCount; i++ {
		quiz.Questions = append(quiz.Questions, buildQuestion(doc, req.QuizType, i))
	}

	writeJSON(w, http.StatusOK, s.store.addQuiz(quiz))
}

// buildQuestion derives question i from the document's chunks.
func buildQuestion(doc models.Document, qt models.QuizType, i int) models.Question {
	chunk := doc.Chunks[i%len(doc.Chunks)]
	snippet := chunk.Content
	if len(snippet) > 80 {
		snippet = snippet[:80]
	}

	q := models.Question{
		QuestionType:   qt,
		QuestionText:   fmt.Sprintf("Question %d: what does page %d of %q say?", i+1, chunk.PageNumber, doc.Title),
		ExpectedAnswer: snippet,
		Explanation:    "See page " + fmt.Sprint(chunk.PageNumber) + ".",
		Topic:          doc.Title,
	}
	if qt != models.QuizTypeMCQ {
		return q
	}

	correct := i % len(optionLetters)
	opts := make([]string, len(optionLetters))
	for j := range opts {
		if j == correct {
			opts[j] = snippet
		} else {
			opts[j] = fmt.Sprintf("Something page %d does not say (%s)", chunk.PageNumber, optionLetters[j])
		}
	}
	q.OptionA, q.OptionB, q.OptionC, q.OptionD = opts[0], opts[1], opts[2], opts[3]
	q.CorrectAnswer = optionLetters[correct]
	q.ExpectedAnswer = ""
	return q
}

// grade is exact letter match for MCQ and any non-empty answer otherwise.
func grade(q models.Question, answer string) (bool, string) {
	answer = strings.TrimSpace(answer)
	if q.QuestionType == models.QuizTypeMCQ {
		if strings.EqualFold(answer, q.CorrectAnswer) {
			return true, "Correct!"
		}
		return false, "The correct answer is " + q.CorrectAnswer + "."
	}
	if answer == "" {
		return false, "No answer given."
	}
	return true, "Answer recorded."
}

func (s *Server) createAttempt(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAttemptRequest
	if !decodeJSON(r, &req) {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	owner := userIDFromContext(r.Context())
	q, err := s.store.quiz(owner, req.QuizID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Quiz not found")
		return
	}

	a := s.store.addAttempt(owner, models.Attempt{
		Quiz:           q.ID,
		QuizTitle:      q.Title,
		DocumentTitle:  q.DocumentTitle,
		TotalQuestions: q.QuestionsCount,
	})
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) submitAttempt(w http.ResponseWriter, r *http.Request) {
	owner := userIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	attempt, err := s.store.attempt(owner, id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}

	var req models.SubmitAttemptRequest
	if !decodeJSON(r, &req) || req.Answers == nil {
		writeJSON(w, http.StatusBadRequest, fieldError("answers", "This field is required."))
		return
	}
	if req.TimeTaken < 0 {
		writeJSON(w, http.StatusBadRequest, fieldError("time_taken", "Ensure this value is greater than or equal to 0."))
		return
	}

	quiz, err := s.store.quiz(owner, attempt.Quiz)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Error processing answers: quiz no longer exists")
		return
	}
	byID := make(map[int64]models.Question, len(quiz.Questions))
	for _, q := range quiz.Questions {
		byID[q.ID] = q
	}

	score := 0
	answers := make([]models.UserAnswer, 0, len(req.Answers))
	for _, in := range req.Answers {
		q, ok := byID[in.QuestionID]
		if !ok {
			continue
		}
		correct, feedback := grade(q, in.Answer)
		if correct {
			score++
		}
		answers = append(answers, models.UserAnswer{
			Question:     q.ID,
			QuestionText: q.QuestionText,
			UserAnswer:   in.Answer,
			IsCorrect:    correct,
			Feedback:     feedback,
			TimeTaken:    in.TimeTaken,
		})
	}

	now := s.now().UTC()
	attempt.Score = score
	attempt.TimeTaken = req.TimeTaken
	attempt.UserAnswers = answers
	attempt.CompletedAt = &now
	attempt.Percentage = models.Percentage(score, attempt.TotalQuestions)
	s.store.saveAttempt(owner, attempt)
	s.store.recordProgress(owner, quiz.Document, quiz.DocumentTitle, score, attempt.TotalQuestions, now)

	writeJSON(w, http.StatusOK, models.SubmitResult{
		Score:          score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     attempt.Percentage,
		AttemptID:      attempt.ID,
	})
}

func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.listAttempts(userIDFromContext(r.Context())))
}

func (s *Server) getAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	a, err := s.store.attempt(userIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) quizStats(w http.ResponseWriter, r *http.Request) {
	owner := userIDFromContext(r.Context())
	attempts := s.store.listAttempts(owner)

	stats := models.QuizStats{TotalAttempts: len(attempts), QuizTypeBreakdown: []models.QuizTypeStats{}}
	type acc struct {
		count int
		sum   int
	}
	byType := map[models.QuizType]*acc{}
	total := 0
	for _, a := range attempts {
		total += a.Score
		stats.TotalQuestionsAnswered += len(a.UserAnswers)
		q, err := s.store.quiz(owner, a.Quiz)
		if err != nil {
			continue
		}
		if byType[q.QuizType] == nil {
			byType[q.QuizType] = &acc{}
		}
		byType[q.QuizType].count++
		byType[q.QuizType].sum += a.Score
	}
	if len(attempts) > 0 {
		stats.AverageScore = round2(float64(total) / float64(len(attempts)))
	}
	for _, qt := range models.QuizTypes {
		if v := byType[qt]; v != nil {
			stats.QuizTypeBreakdown = append(stats.QuizTypeBreakdown, models.QuizTypeStats{
				QuizType:     qt,
				Count:        v.count,
				AverageScore: float64(v.sum) / float64(v.count),
			})
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
