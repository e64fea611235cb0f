package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
	"github.com/dmitrijs2005/pdflearn/internal/client/validation"
)

const recentAttemptsShown = 3

// Dashboard shows the welcome line, recent attempts and quick stats.
func (a *App) Dashboard(ctx context.Context, _ []string) error {
	p := a.page()
	docs, err := p.documents.Refetch(ctx)
	if err != nil {
		return err
	}
	attempts, err := p.attempts.Refetch(ctx)
	if err != nil {
		return err
	}
	stats, err := a.progress.Stats(ctx)
	if err != nil {
		return err
	}

	name := "Student"
	if u := a.session.State().User; u != nil {
		name = u.Username
	}
	a.printf("Welcome back, %s!\n", name)
	a.println("Ready to continue your learning journey?")
	if len(docs) == 0 {
		a.println("Get started by uploading your first PDF document with 'upload <path>'.")
	}

	a.println("\nRecent Activity")
	if len(attempts) == 0 {
		a.println("  No recent activity. Start by taking your first quiz!")
	}
	for i, at := range attempts {
		if i == recentAttemptsShown {
			a.println("  ... see all with 'attempts'")
			break
		}
		a.printf("  %s - %s - Score: %d/%d (%.2f%%)\n", at.QuizTitle, at.DocumentTitle, at.Score, at.TotalQuestions, at.Percentage)
	}

	a.println("\nQuick Stats")
	a.printf("  Documents:     %d\n", stats.TotalDocuments)
	a.printf("  Quizzes Taken: %d\n", stats.TotalQuizzes)
	a.printf("  Accuracy:      %.2f%%\n", stats.OverallAccuracy)
	return nil
}

// Progress shows the overview summary and per-document progress.
func (a *App) Progress(ctx context.Context, _ []string) error {
	ov, err := a.progress.Overview(ctx)
	if err != nil {
		return err
	}
	stats, err := a.progress.Stats(ctx)
	if err != nil {
		return err
	}

	s := ov.Summary
	a.printf("Documents: %d  Quizzes: %d  Questions: %d  Accuracy: %.2f%%\n",
		s.TotalDocuments, s.TotalQuizzes, s.TotalQuestions, s.OverallAccuracy)
	a.printf("Study sessions this week: %d\n", stats.RecentSessions)

	if len(stats.DailyStats) > 0 {
		days := make([]string, 0, len(stats.DailyStats))
		for d := range stats.DailyStats {
			days = append(days, d)
		}
		sort.Strings(days)
		a.println("\nLast days:")
		for _, d := range days {
			ds := stats.DailyStats[d]
			a.printf("  %s  %d quiz(zes)  %.2f%%\n", d, ds.Quizzes, ds.AverageScore)
		}
	}

	if len(ov.ProgressData) == 0 {
		a.println("\nNo progress yet. Take a quiz to start tracking.")
		return nil
	}
	a.println()
	tw := newTable(a.out, "DOCUMENT", "QUIZZES", "QUESTIONS", "CORRECT", "AVERAGE", "COMPLETION")
	for _, dp := range ov.ProgressData {
		tw.row(dp.DocumentTitle, dp.TotalQuizzesTaken, dp.TotalQuestionsAttempted, dp.TotalCorrectAnswers,
			pct(dp.AverageScore), pct(dp.CompletionPercentage))
	}
	return tw.flush()
}

func pct(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" }

// Sessions lists study sessions; --recent limits it to the latest ones.
func (a *App) Sessions(ctx context.Context, args []string) error {
	load := a.progress.Sessions
	if len(args) > 0 && args[0] == "--recent" {
		load = a.progress.RecentSessions
	}
	list, err := load(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No Study Sessions")
		return nil
	}
	tw := newTable(a.out, "ID", "DOCUMENT", "TYPE", "STARTED", "DURATION", "QUESTIONS", "ACCURACY")
	for _, s := range list {
		duration := "active"
		if !s.Active() {
			duration = models.FormatDuration(s.TimeSpent)
		}
		tw.row(s.ID, s.DocumentTitle, s.SessionType, s.StartTime.Format("2006-01-02 15:04"), duration,
			s.QuestionsAttempted, pct(models.SessionAccuracy(s)))
	}
	return tw.flush()
}

func (a *App) StartSession(ctx context.Context, args []string) error {
	id, err := parseID(args, "startsession <document id> [reading|quiz|review]")
	if err != nil {
		return err
	}
	req := models.StartSessionRequest{DocumentID: id, SessionType: models.SessionTypeQuiz}
	if len(args) > 1 {
		switch t := models.SessionType(strings.ToLower(args[1])); t {
		case models.SessionTypeReading, models.SessionTypeQuiz, models.SessionTypeReview:
			req.SessionType = t
		default:
			return fmt.Errorf("unknown session type %q", args[1])
		}
	}
	s, err := a.progress.StartSession(ctx, req)
	if err != nil {
		return err
	}
	a.printf("Started %s session %d on %q. End it with 'endsession %d'.\n", s.SessionType, s.ID, s.DocumentTitle, s.ID)
	return nil
}

func (a *App) EndSession(ctx context.Context, args []string) error {
	id, err := parseID(args, "endsession <id>")
	if err != nil {
		return err
	}
	s, err := a.progress.EndSession(ctx, id)
	if err != nil {
		return err
	}
	a.printf("Session %d ended after %s.\n", s.ID, models.FormatDuration(s.TimeSpent))
	return nil
}

// Goals lists learning goals with their status.
func (a *App) Goals(ctx context.Context, _ []string) error {
	goals, err := a.page().goals.Refetch(ctx)
	if err != nil {
		return err
	}
	a.printGoals(goals)
	return nil
}

func (a *App) printGoals(goals []models.LearningGoal) {
	if len(goals) == 0 {
		a.println("No Learning Goals")
		return
	}
	now := a.now()
	for _, g := range goals {
		status := g.Status(now)
		a.printf("#%d %s [%s]\n", g.ID, g.Title, status)
		if g.DocumentTitle != nil {
			a.printf("   Document: %s\n", *g.DocumentTitle)
		}
		a.printf("   Progress: %.0f/%.0f (%.0f%%)\n", g.CurrentProgress, g.TargetScore, g.Progress())
		switch days := g.DaysUntil(now); {
		case status == models.GoalCompleted:
		case days < 0:
			a.printf("   Target date %s passed %d day(s) ago\n", g.TargetDate, -days)
		default:
			a.printf("   Target date %s, %d day(s) left\n", g.TargetDate, days)
		}
	}
}

// AddGoal creates a goal and refreshes the goal list without a reload.
func (a *App) AddGoal(ctx context.Context, _ []string) error {
	var req models.GoalRequest
	var err error

	if req.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if req.Description, err = getSimpleText(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}
	date, err := GetTextDefault(a.reader, "Target date (YYYY-MM-DD)", a.now().AddDate(0, 0, 30).Format("2006-01-02"), a.out)
	if err != nil {
		return err
	}
	if req.TargetDate, err = models.ParseDate(date); err != nil {
		return err
	}
	score, err := GetInt(a.reader, "Target score (%)", models.DefaultTargetScore, a.out)
	if err != nil {
		return err
	}
	req.TargetScore = float64(score)
	docID, err := getSimpleText(a.reader, "Document id (optional)", a.out)
	if err != nil {
		return err
	}
	if docID != "" {
		id, err := parseID([]string{docID}, "document id")
		if err != nil {
			return err
		}
		req.Document = &id
	}

	if err := validation.Goal(req); err != nil {
		return err
	}
	g, err := a.progress.CreateGoal(ctx, req)
	if err != nil {
		return err
	}
	a.printf("Goal #%d created.\n", g.ID)

	goals, err := a.page().goals.Refetch(ctx)
	if err != nil {
		return err
	}
	a.printGoals(goals)
	return nil
}

func (a *App) GoalProgress(ctx context.Context, args []string) error {
	id, err := parseID(args, "goalprogress <id> <value>")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return usage("goalprogress <id> <value>")
	}
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil || value < 0 {
		return fmt.Errorf("%q is not a valid progress value", args[1])
	}
	g, err := a.progress.UpdateGoalProgress(ctx, id, value)
	if err != nil {
		return err
	}
	a.printf("Goal #%d progress: %.0f/%.0f", g.ID, g.CurrentProgress, g.TargetScore)
	if g.Completed {
		a.printf(" - completed!")
	}
	a.println()
	_, _ = a.page().goals.Refetch(ctx)
	return nil
}

func (a *App) CompleteGoal(ctx context.Context, args []string) error {
	id, err := parseID(args, "completegoal <id>")
	if err != nil {
		return err
	}
	done := true
	g, err := a.progress.UpdateGoal(ctx, id, models.GoalPatch{Completed: &done})
	if err != nil {
		return err
	}
	a.printf("Goal #%d %q marked completed.\n", g.ID, g.Title)
	_, _ = a.page().goals.Refetch(ctx)
	return nil
}
