package models

import (
	"fmt"
	"time"
)

// QuizType selects how a question is answered.
type QuizType string

const (
	QuizTypeMCQ QuizType = "mcq"
	QuizTypeSAQ QuizType = "saq"
	QuizTypeLAQ QuizType = "laq"
)

var QuizTypes = []QuizType{QuizTypeMCQ, QuizTypeSAQ, QuizTypeLAQ}

func (t QuizType) Label() string {
	switch t {
	case QuizTypeMCQ:
		return "Multiple Choice Questions"
	case QuizTypeSAQ:
		return "Short Answer Questions"
	case QuizTypeLAQ:
		return "Long Answer Questions"
	default:
		return string(t)
	}
}

func ParseQuizType(s string) (QuizType, error) {
	for _, t := range QuizTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown quiz type %q", s)
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Quiz generation limits and defaults.
const (
	DefaultQuizType       = QuizTypeMCQ
	DefaultQuestionsCount = 5
	MinQuestionsCount     = 1
	MaxQuestionsCount     = 20
	DefaultDifficulty     = DifficultyMedium
	DefaultTargetScore    = 80
	UrgentGoalWindowDays  = 7
)

type Question struct {
	ID             int64    `json:"id"`
	QuestionText   string   `json:"question_text"`
	QuestionType   QuizType `json:"question_type"`
	OptionA        string   `json:"option_a,omitempty"`
	OptionB        string   `json:"option_b,omitempty"`
	OptionC        string   `json:"option_c,omitempty"`
	OptionD        string   `json:"option_d,omitempty"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	ExpectedAnswer string   `json:"expected_answer,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	Topic          string   `json:"topic,omitempty"`
}

// Option is one lettered MCQ choice.
type Option struct {
	Letter string
	Text   string
}

// Options lists the non-empty MCQ choices in letter order.
func (q Question) Options() []Option {
	all := []Option{{"A", q.OptionA}, {"B", q.OptionB}, {"C", q.OptionC}, {"D", q.OptionD}}
	out := make([]Option, 0, len(all))
	for _, o := range all {
		if o.Text != "" {
			out = append(out, o)
		}
	}
	return out
}

type Quiz struct {
	ID             int64      `json:"id"`
	Document       int64      `json:"document"`
	DocumentTitle  string     `json:"document_title"`
	QuizType       QuizType   `json:"quiz_type"`
	Title          string     `json:"title"`
	CreatedAt      time.Time  `json:"created_at"`
	QuestionsCount int        `json:"questions_count"`
	Difficulty     Difficulty `json:"difficulty"`
	Questions      []Question `json:"questions,omitempty"`
}

type GenerateQuizRequest struct {
	DocumentID     int64      `json:"document_id"`
	QuizType       QuizType   `json:"quiz_type"`
	QuestionsCount int        `json:"questions_count"`
	Difficulty     Difficulty `json:"difficulty"`
}

// DefaultGenerateRequest returns the generator form pre-filled for docID.
func DefaultGenerateRequest(docID int64) GenerateQuizRequest {
	return GenerateQuizRequest{
		DocumentID:   docID,
		QuizType:     DefaultQuizType,
		QuestionsCount: DefaultQuestionsCount,
		Difficulty:   DefaultDifficulty,
	}
}

type CreateAttemptRequest struct {
	QuizID int64 `json:"quiz_id"`
}

type UserAnswer struct {
	ID           int64  `json:"id"`
	Question     int64  `json:"question"`
	QuestionText string `json:"question_text"`
	UserAnswer   string `json:"user_answer"`
	IsCorrect    bool   `json:"is_correct"`
	Feedback     string `json:"feedback,omitempty"`
	TimeTaken    int    `json:"time_taken"`
}

type Attempt struct {
	ID             int64        `json:"id"`
	Quiz           int64        `json:"quiz"`
	QuizTitle      string       `json:"quiz_title"`
	DocumentTitle  string       `json:"document_title"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Percentage     float64      `json:"percentage"`
	CompletedAt    *time.Time   `json:"completed_at"`
	TimeTaken      int          `json:"time_taken"`
	UserAnswers    []UserAnswer `json:"user_answers,omitempty"`
}

type AnswerSubmission struct {
	QuestionID int64  `json:"question_id"`
	Answer     string `json:"answer"`
	TimeTaken  int    `json:"time_taken"`
}

type SubmitAttemptRequest struct {
	Answers   []AnswerSubmission `json:"answers"`
	TimeTaken int                `json:"time_taken"`
}

type SubmitResult struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	AttemptID      int64   `json:"attempt_id"`
}

type QuizTypeStats struct {
	QuizType     QuizType `json:"quiz__quiz_type"`
	Count        int      `json:"count"`
	AverageScore float64  `json:"avg_score"`
}

type QuizStats struct {
	TotalAttempts          int             `json:"total_attempts"`
	AverageScore           float64         `json:"average_score"`
	TotalQuestionsAnswered int             `json:"total_questions_answered"`
	QuizTypeBreakdown      []QuizTypeStats `json:"quiz_type_breakdown"`
}
