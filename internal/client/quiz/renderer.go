package quiz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

// ErrInvalidAnswer is returned by a Renderer when the input cannot be
// accepted as an answer. The runner asks again.
var ErrInvalidAnswer = errors.New("invalid answer")

// Renderer shows one question and turns the user's input into the answer
// string the server expects for that question type.
type Renderer interface {
	Render(w io.Writer, q models.Question)
	// Read returns the raw input line (or block) typed by the user.
	Read(r *bufio.Reader, w io.Writer) (string, error)
	// Parse normalizes the input. Empty input yields ErrInvalidAnswer.
	Parse(q models.Question, input string) (string, error)
}

// Renderers returns the built-in renderer for every quiz type.
func Renderers() map[models.QuizType]Renderer {
	return map[models.QuizType]Renderer{
		models.QuizTypeMCQ: MCQ{},
		models.QuizTypeSAQ: ShortAnswer{},
		models.QuizTypeLAQ: LongAnswer{},
	}
}

type MCQ struct{}

func (MCQ) Render(w io.Writer, q models.Question) {
	fmt.Fprintln(w, q.QuestionText)
	for _, o := range q.Options() {
		fmt.Fprintf(w, "  %s) %s\n", o.Letter, o.Text)
	}
}

func (MCQ) Read(r *bufio.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Your choice: ")
	return readLine(r)
}

// Parse accepts a letter of a non-empty option, case-insensitively.
func (MCQ) Parse(q models.Question, input string) (string, error) {
	in := strings.TrimSpace(input)
	for _, o := range q.Options() {
		if strings.EqualFold(in, o.Letter) {
			return strings.ToLower(o.Letter), nil
		}
	}
	return "", fmt.Errorf("%w: choose one of %s", ErrInvalidAnswer, letters(q))
}

type ShortAnswer struct{}

func (ShortAnswer) Render(w io.Writer, q models.Question) {
	fmt.Fprintln(w, q.QuestionText)
	fmt.Fprintln(w, "Answer in a sentence or two.")
}

func (ShortAnswer) Read(r *bufio.Reader, w io.Writer) (string, error) {
	fmt.Fprint(w, "Your answer: ")
	return readLine(r)
}

func (ShortAnswer) Parse(_ models.Question, input string) (string, error) {
	return nonEmpty(input)
}

type LongAnswer struct{}

func (LongAnswer) Render(w io.Writer, q models.Question) {
	fmt.Fprintln(w, q.QuestionText)
	fmt.Fprintln(w, "Give a detailed answer. Finish with an empty line.")
}

func (LongAnswer) Read(r *bufio.Reader, w io.Writer) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if len(lines) == 0 && strings.HasPrefix(line, ":") {
			return strings.TrimSpace(line), nil
		}
		if line != "" {
			lines = append(lines, line)
		}
		if line == "" || err != nil {
			if err != nil && len(lines) == 0 {
				return "", err
			}
			return strings.Join(lines, "\n"), nil
		}
	}
}

func (LongAnswer) Parse(_ models.Question, input string) (string, error) {
	return nonEmpty(input)
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: answer cannot be empty", ErrInvalidAnswer)
	}
	return s, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func letters(q models.Question) string {
	opts := q.Options()
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Letter
	}
	return strings.Join(out, "/")
}
