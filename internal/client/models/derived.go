package models

import (
	"fmt"
	"math"
	"time"
)

// Percentage is score/total as a percent rounded to two decimals; 0 for an empty total.
func Percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(total)*10000) / 100
}

// PerformanceText grades a percentage the way the results screen does.
func PerformanceText(pct float64) string {
	switch {
	case pct >= 90:
		return "Outstanding!"
	case pct >= 80:
		return "Excellent!"
	case pct >= 70:
		return "Great Job!"
	case pct >= 60:
		return "Good Work!"
	case pct >= 50:
		return "Not Bad!"
	default:
		return "Keep Practicing!"
	}
}

func PerformanceSubtext(pct float64) string {
	switch {
	case pct >= 90:
		return "You have mastered this material!"
	case pct >= 70:
		return "You have a strong understanding of the content."
	case pct >= 50:
		return "You have a good foundation, keep learning!"
	default:
		return "Review the material and try again for better results."
	}
}

type GoalStatus string

const (
	GoalCompleted GoalStatus = "completed"
	GoalOverdue   GoalStatus = "overdue"
	GoalUrgent    GoalStatus = "urgent"
	GoalActive    GoalStatus = "active"
)

// DaysUntil counts calendar days from now to the goal's target date.
// Negative when the date has passed.
func (g LearningGoal) DaysUntil(now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(g.TargetDate.Year(), g.TargetDate.Month(), g.TargetDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24)
}

func (g LearningGoal) Status(now time.Time) GoalStatus {
	if g.Completed {
		return GoalCompleted
	}
	days := g.DaysUntil(now)
	switch {
	case days < 0:
		return GoalOverdue
	case days <= UrgentGoalWindowDays:
		return GoalUrgent
	default:
		return GoalActive
	}
}

// Progress is current progress relative to the target score, capped at 100.
func (g LearningGoal) Progress() float64 {
	if g.TargetScore <= 0 {
		return 0
	}
	return math.Min(g.CurrentProgress/g.TargetScore*100, 100)
}

func SessionAccuracy(s StudySession) float64 {
	return Percentage(s.CorrectAnswers, s.QuestionsAttempted)
}

// FormatDuration renders seconds as "1h 5m" or "5m".
func FormatDuration(seconds int) string {
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatTimer renders seconds as m:ss.
func FormatTimer(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatElapsed renders seconds as "2m 5s" for quiz results.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
