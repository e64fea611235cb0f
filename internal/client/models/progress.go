package models

import (
	"fmt"
	"time"
)

type DocumentProgress struct {
	ID                      int64              `json:"id"`
	Document                int64              `json:"document"`
	DocumentTitle           string             `json:"document_title"`
	TotalQuizzesTaken       int                `json:"total_quizzes_taken"`
	TotalQuestionsAttempted int                `json:"total_questions_attempted"`
	TotalCorrectAnswers     int                `json:"total_correct_answers"`
	AverageScore            float64            `json:"average_score"`
	OverallScore            float64            `json:"overall_score"`
	CompletionPercentage    float64            `json:"completion_percentage"`
	Strengths               map[string]float64 `json:"strengths,omitempty"`
	Weaknesses              map[string]float64 `json:"weaknesses,omitempty"`
	LastActivity            *time.Time         `json:"last_activity"`
}

type DailyStats struct {
	Quizzes      int     `json:"quizzes"`
	AverageScore float64 `json:"average_score"`
}

type ProgressStats struct {
	TotalDocuments  int                   `json:"total_documents"`
	TotalQuizzes    int                   `json:"total_quizzes"`
	TotalQuestions  int                   `json:"total_questions"`
	OverallAccuracy float64               `json:"overall_accuracy"`
	RecentSessions  int                   `json:"recent_sessions"`
	DailyStats      map[string]DailyStats `json:"daily_stats,omitempty"`
	Strengths       map[string]float64    `json:"strengths,omitempty"`
	Weaknesses      map[string]float64    `json:"weaknesses,omitempty"`
}

type OverviewSummary struct {
	TotalDocuments  int     `json:"total_documents"`
	TotalQuizzes    int     `json:"total_quizzes"`
	TotalQuestions  int     `json:"total_questions"`
	OverallAccuracy float64 `json:"overall_accuracy"`
}

type ProgressOverview struct {
	ProgressData []DocumentProgress `json:"progress_data"`
	Summary      OverviewSummary    `json:"summary"`
}

type SessionType string

const (
	SessionTypeReading SessionType = "reading"
	SessionTypeQuiz    SessionType = "quiz"
	SessionTypeReview  SessionType = "review"
)

type StudySession struct {
	ID                 int64       `json:"id"`
	Document           int64       `json:"document"`
	DocumentTitle      string      `json:"document_title"`
	StartTime          time.Time   `json:"start_time"`
	EndTime            *time.Time  `json:"end_time"`
	SessionType        SessionType `json:"session_type"`
	QuizType           QuizType    `json:"quiz_type,omitempty"`
	QuestionsAttempted int         `json:"questions_attempted"`
	CorrectAnswers     int         `json:"correct_answers"`
	TimeSpent          int         `json:"time_spent"`
	DurationMinutes    float64     `json:"duration_minutes"`
	Accuracy           float64     `json:"accuracy"`
}

// Active reports whether the session has not been ended yet.
func (s StudySession) Active() bool { return s.EndTime == nil }

type StartSessionRequest struct {
	DocumentID  int64       `json:"document_id"`
	SessionType SessionType `json:"session_type"`
	QuizType    QuizType    `json:"quiz_type,omitempty"`
}

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(y int, m time.Month, d int) Date {
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return Date{t}, nil
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type LearningGoal struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	TargetDate         Date      `json:"target_date"`
	Document           *int64    `json:"document"`
	DocumentTitle      *string   `json:"document_title"`
	TargetScore        float64   `json:"target_score"`
	CurrentProgress    float64   `json:"current_progress"`
	Completed          bool      `json:"completed"`
	CreatedAt          time.Time `json:"created_at"`
	DaysRemaining      int       `json:"days_remaining"`
	ProgressPercentage float64   `json:"progress_percentage"`
}

type GoalRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	TargetDate  Date    `json:"target_date"`
	Document    *int64  `json:"document,omitempty"`
	TargetScore float64 `json:"target_score"`
}

// GoalPatch is a partial goal update; nil fields are left untouched.
type GoalPatch struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	TargetDate  *Date    `json:"target_date,omitempty"`
	TargetScore *float64 `json:"target_score,omitempty"`
	Completed   *bool    `json:"completed,omitempty"`
}

type GoalProgressRequest struct {
	Progress float64 `json:"progress"`
}
