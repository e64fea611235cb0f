package quiz

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

func TestMCQ_ParseSkipsEmptyOptions(t *testing.T) {
	q := models.Question{OptionA: "one", OptionB: "two", OptionC: "three"}

	got, err := MCQ{}.Parse(q, " C ")
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	_, err = MCQ{}.Parse(q, "d")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Contains(t, err.Error(), "choose one of A/B/C")
}

func TestMCQ_Render(t *testing.T) {
	var out bytes.Buffer
	MCQ{}.Render(&out, models.Question{QuestionText: "Pick", OptionA: "x", OptionB: "y"})

	assert.Equal(t, "Pick\n  A) x\n  B) y\n", out.String())
}

func TestLongAnswer_Read(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		err   error
	}{
		{"block", "first line\nsecond line\n\nnext", "first line\nsecond line", nil},
		{"eof ends block", "only line", "only line", nil},
		{"command", ":back\n", ":back", nil},
		{"command only at start", "text\n:back\n\n", "text\n:back", nil},
		{"nothing", "", "", io.EOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LongAnswer{}.Read(bufio.NewReader(strings.NewReader(tt.input)), io.Discard)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFreeText_RejectsBlank(t *testing.T) {
	for _, r := range []Renderer{ShortAnswer{}, LongAnswer{}} {
		_, err := r.Parse(models.Question{}, "   ")
		assert.ErrorIs(t, err, ErrInvalidAnswer)

		got, err := r.Parse(models.Question{}, "  an answer ")
		require.NoError(t, err)
		assert.Equal(t, "an answer", got)
	}
}

func TestRenderersCoverEveryType(t *testing.T) {
	r := Renderers()
	for _, qt := range []models.QuizType{models.QuizTypeMCQ, models.QuizTypeSAQ, models.QuizTypeLAQ} {
		assert.Contains(t, r, qt)
	}
}
