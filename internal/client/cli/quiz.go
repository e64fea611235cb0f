package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/client"
	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/quiz"
	"github.com/dmitrijs2005/pdflearn/internal/client/validation"
)

const (
	generateFailed = "Failed to generate quiz. Please try again."
	noProcessed    = "No processed documents available. Please upload and process a PDF first to generate quizzes."
)

// documents reloads the list so freshly processed documents show up. While
// the server is unreachable the last loaded list is used instead.
func (a *App) documents(ctx context.Context) ([]models.Document, error) {
	q := a.page().documents
	docs, err := q.Refetch(ctx)
	if err == nil {
		return docs, nil
	}
	if cached := q.State().Data; errors.Is(err, client.ErrUnavailable) && len(cached) > 0 {
		return cached, nil
	}
	return nil, err
}

// TakeQuiz is the quiz page: pick a processed document and settings,
// generate the quiz, take it and submit the answers.
func (a *App) TakeQuiz(ctx context.Context, _ []string) error {
	docs, err := a.documents(ctx)
	if err != nil {
		return err
	}
	processed := models.ProcessedDocuments(docs)
	if len(processed) == 0 {
		a.println(noProcessed)
		return nil
	}

	doc, req, err := a.quizSettings(processed)
	if err != nil {
		return err
	}
	if err := validation.GenerateQuiz(doc, req); err != nil {
		return err
	}

	a.println("Generating quiz...")
	qz, err := a.quizzes.Generate(ctx, req)
	if err != nil {
		return &displayError{text: apiFieldMessage(err, "error", generateFailed)}
	}
	return a.runQuiz(ctx, qz)
}

func (a *App) quizSettings(processed []models.Document) (*models.Document, models.GenerateQuizRequest, error) {
	a.println("Processed documents:")
	for i, d := range processed {
		a.printf("  %d) %s\n", i+1, d.Title)
	}
	choice, err := getSimpleText(a.reader, "Document number", a.out)
	if err != nil {
		return nil, models.GenerateQuizRequest{}, err
	}
	var doc *models.Document
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(processed) {
		doc = &processed[n-1]
	}
	if doc == nil {
		return nil, models.GenerateQuizRequest{}, validation.ErrNoDocument
	}

	req := models.DefaultGenerateRequest(doc.ID)
	typ, err := GetTextDefault(a.reader, "Quiz type (mcq, saq, laq)", string(req.QuizType), a.out)
	if err != nil {
		return nil, req, err
	}
	if req.QuizType, err = models.ParseQuizType(strings.ToLower(typ)); err != nil {
		return nil, req, err
	}
	if req.QuestionsCount, err = GetInt(a.reader, "Number of questions (1-20)", req.QuestionsCount, a.out); err != nil {
		return nil, req, err
	}
	diff, err := GetTextDefault(a.reader, "Difficulty (easy, medium, hard)", string(req.Difficulty), a.out)
	if err != nil {
		return nil, req, err
	}
	if req.Difficulty, err = models.ParseDifficulty(strings.ToLower(diff)); err != nil {
		return nil, req, err
	}
	return doc, req, nil
}

// runQuiz creates an attempt, runs it and shows the results. The attempt
// history is refreshed afterwards.
func (a *App) runQuiz(ctx context.Context, qz models.Quiz) error {
	attempt, err := a.quizzes.CreateAttempt(ctx, qz.ID)
	if err != nil {
		return err
	}

	a.printf("\n%s: %d %s question(s). Type %s to go back, %s to abandon.\n",
		qz.Title, len(qz.Questions), qz.QuizType.Label(), quiz.CmdBack, quiz.CmdQuit)
	sub, err := a.runner.Run(ctx, qz)
	if errors.Is(err, quiz.ErrAborted) {
		a.println("Quiz abandoned.")
		return nil
	}
	if err != nil {
		return err
	}

	res, err := a.quizzes.SubmitAttempt(ctx, attempt.ID, sub)
	if err != nil {
		return err
	}
	a.printResult(res, sub.TimeTaken)

	if _, err := a.page().attempts.Refetch(ctx); err != nil {
		a.log.Warn(ctx, "refresh attempts after submit", "error", err)
	}
	return nil
}

func (a *App) printResult(res models.SubmitResult, seconds int) {
	a.println()
	a.println(models.PerformanceText(res.Percentage))
	a.println(models.PerformanceSubtext(res.Percentage))
	a.printf("Score: %d/%d (%.2f%%)\n", res.Score, res.TotalQuestions, res.Percentage)
	a.printf("Time:  %s\n", models.FormatElapsed(seconds))
	a.printf("Review it with 'attempt %d'.\n", res.AttemptID)
}

func (a *App) Quizzes(ctx context.Context, _ []string) error {
	list, err := a.quizzes.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No quizzes yet. Generate one with 'quiz'.")
		return nil
	}
	tw := newTable(a.out, "ID", "TITLE", "DOCUMENT", "TYPE", "QUESTIONS", "DIFFICULTY")
	for _, q := range list {
		tw.row(q.ID, q.Title, q.DocumentTitle, q.QuizType.Label(), q.QuestionsCount, q.Difficulty)
	}
	return tw.flush()
}

func (a *App) Attempts(ctx context.Context, _ []string) error {
	list, err := a.page().attempts.Refetch(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No Quiz Attempts Yet")
		return nil
	}
	tw := newTable(a.out, "ID", "QUIZ", "DOCUMENT", "SCORE", "PERCENT", "TIME", "COMPLETED")
	for _, at := range list {
		completed := "in progress"
		if at.CompletedAt != nil {
			completed = at.CompletedAt.Format("2006-01-02 15:04")
		}
		tw.row(at.ID, at.QuizTitle, at.DocumentTitle,
			strconv.Itoa(at.Score)+"/"+strconv.Itoa(at.TotalQuestions),
			strconv.FormatFloat(at.Percentage, 'f', 2, 64)+"%",
			models.FormatElapsed(at.TimeTaken), completed)
	}
	return tw.flush()
}

func (a *App) AttemptDetail(ctx context.Context, args []string) error {
	id, err := parseID(args, "attempt <id>")
	if err != nil {
		return err
	}
	at, err := a.quizzes.Attempt(ctx, id)
	if err != nil {
		return err
	}

	a.printf("%s (%s)\n", at.QuizTitle, at.DocumentTitle)
	a.printf("Score: %d/%d (%.2f%%) %s\n", at.Score, at.TotalQuestions, at.Percentage, models.PerformanceText(at.Percentage))
	a.printf("Time:  %s\n", models.FormatElapsed(at.TimeTaken))
	for i, ua := range at.UserAnswers {
		mark := "x"
		if ua.IsCorrect {
			mark = "ok"
		}
		a.printf("\n%d. [%s] %s\n   Your answer: %s\n", i+1, mark, ua.QuestionText, ua.UserAnswer)
		if ua.Feedback != "" {
			a.printf("   %s\n", ua.Feedback)
		}
	}
	return nil
}

func (a *App) QuizStats(ctx context.Context, _ []string) error {
	st, err := a.quizzes.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Attempts:           %d\n", st.TotalAttempts)
	a.printf("Average score:      %.2f%%\n", st.AverageScore)
	a.printf("Questions answered: %d\n", st.TotalQuestionsAnswered)
	if len(st.QuizTypeBreakdown) == 0 {
		return nil
	}
	a.println()
	tw := newTable(a.out, "TYPE", "ATTEMPTS", "AVERAGE")
	for _, b := range st.QuizTypeBreakdown {
		tw.row(b.QuizType.Label(), b.Count, strconv.FormatFloat(b.AverageScore, 'f', 2, 64)+"%")
	}
	return tw.flush()
}
