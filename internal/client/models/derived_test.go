package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 60.0, Percentage(3, 5))
	assert.Equal(t, 66.67, Percentage(2, 3))
}

func TestPerformanceText(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Outstanding!"},
		{90, "Outstanding!"},
		{89.99, "Excellent!"},
		{80, "Excellent!"},
		{70, "Great Job!"},
		{60, "Good Work!"},
		{50, "Not Bad!"},
		{49.9, "Keep Practicing!"},
		{0, "Keep Practicing!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceText(tt.pct), "pct=%v", tt.pct)
	}
	assert.Equal(t, "You have a strong understanding of the content.", PerformanceSubtext(75))
}

func TestGoalStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		goal LearningGoal
		want GoalStatus
	}{
		{"completed wins over overdue", LearningGoal{Completed: true, TargetDate: NewDate(2025, 1, 1)}, GoalCompleted},
		{"overdue", LearningGoal{TargetDate: NewDate(2025, 3, 9)}, GoalOverdue},
		{"due today is urgent", LearningGoal{TargetDate: NewDate(2025, 3, 10)}, GoalUrgent},
		{"seven days is urgent", LearningGoal{TargetDate: NewDate(2025, 3, 17)}, GoalUrgent},
		{"eight days is active", LearningGoal{TargetDate: NewDate(2025, 3, 18)}, GoalActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.goal.Status(now))
		})
	}
	assert.Equal(t, -1, LearningGoal{TargetDate: NewDate(2025, 3, 9)}.DaysUntil(now))
}

func TestGoalProgress(t *testing.T) {
	assert.Equal(t, 50.0, LearningGoal{TargetScore: 80, CurrentProgress: 40}.Progress())
	assert.Equal(t, 100.0, LearningGoal{TargetScore: 80, CurrentProgress: 95}.Progress())
	assert.Equal(t, 0.0, LearningGoal{}.Progress())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0m", FormatDuration(59))
	assert.Equal(t, "5m", FormatDuration(300))
	assert.Equal(t, "1h 5m", FormatDuration(3900))
	assert.Equal(t, "0:00", FormatTimer(-4))
	assert.Equal(t, "1:05", FormatTimer(65))
	assert.Equal(t, "12:30", FormatTimer(750))
	assert.Equal(t, "2m 5s", FormatElapsed(125))
	assert.Equal(t, "0m 0s", FormatElapsed(-1))
	assert.Equal(t, 75.0, SessionAccuracy(StudySession{QuestionsAttempted: 4, CorrectAnswers: 3}))
}

func TestDate_JSON(t *testing.T) {
	var g LearningGoal
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"target_date":"2025-06-30","target_score":80}`), &g))
	assert.Equal(t, "2025-06-30", g.TargetDate.String())

	out, err := json.Marshal(GoalRequest{Title: "t", TargetDate: g.TargetDate, TargetScore: 80})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"t","target_date":"2025-06-30","target_score":80}`, string(out))

	_, err = ParseDate("30/06/2025")
	require.Error(t, err)
}

func TestQuestionOptions(t *testing.T) {
	q := Question{OptionA: "one", OptionB: "two", OptionD: "four"}
	assert.Equal(t, []Option{{"A", "one"}, {"B", "two"}, {"D", "four"}}, q.Options())
}

func TestParseQuizTypeAndDifficulty(t *testing.T) {
	qt, err := ParseQuizType("laq")
	require.NoError(t, err)
	assert.Equal(t, QuizTypeLAQ, qt)
	_, err = ParseQuizType("essay")
	require.Error(t, err)

	d, err := ParseDifficulty("hard")
	require.NoError(t, err)
	assert.Equal(t, DifficultyHard, d)
	_, err = ParseDifficulty("extreme")
	require.Error(t, err)

	req := DefaultGenerateRequest(3)
	assert.Equal(t, GenerateQuizRequest{DocumentID: 3, QuizType: QuizTypeMCQ, QuestionsCount: 5, Difficulty: DifficultyMedium}, req)
}
