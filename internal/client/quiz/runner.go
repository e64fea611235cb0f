// Package quiz runs a quiz in the terminal. One runner drives every quiz
// type; a Renderer per type shows the question and parses the answer.
package quiz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrUnsupportedType = errors.New("unsupported quiz type")
	ErrAborted         = errors.New("quiz aborted")
)

// Navigation words understood at any answer prompt.
const (
	CmdBack  = ":back"
	CmdQuit  = ":quit"
	CmdTimer = ":time"
)

type Option func(*Runner)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithRenderer overrides the renderer for one quiz type.
func WithRenderer(t models.QuizType, rd Renderer) Option {
	return func(r *Runner) { r.renderers[t] = rd }
}

type Runner struct {
	in        *bufio.Reader
	out       io.Writer
	now       func() time.Time
	renderers map[models.QuizType]Renderer
}

func NewRunner(in *bufio.Reader, out io.Writer, opts ...Option) *Runner {
	r := &Runner{in: in, out: out, now: time.Now, renderers: Renderers()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run asks every question of q and returns the submission. Every question
// must be answered before the quiz is submitted; ":back" revisits the
// previous question and ":quit" aborts with ErrAborted.
func (r *Runner) Run(ctx context.Context, q models.Quiz) (models.SubmitAttemptRequest, error) {
	if len(q.Questions) == 0 {
		return models.SubmitAttemptRequest{}, ErrNoQuestions
	}
	for _, question := range q.Questions {
		if _, err := r.renderer(q, question); err != nil {
			return models.SubmitAttemptRequest{}, err
		}
	}

	answers := make([]string, len(q.Questions))
	spent := make([]time.Duration, len(q.Questions))
	start := r.now()

	for i := 0; i < len(q.Questions); {
		if err := ctx.Err(); err != nil {
			return models.SubmitAttemptRequest{}, err
		}
		question := q.Questions[i]
		rd, _ := r.renderer(q, question)

		fmt.Fprintf(r.out, "\nQuestion %d of %d (%d/%d answered, %s)\n",
			i+1, len(q.Questions), answered(answers), len(answers),
			models.FormatTimer(int(r.now().Sub(start).Seconds())))
		rd.Render(r.out, question)
		if answers[i] != "" {
			fmt.Fprintf(r.out, "Current answer: %s\n", answers[i])
		}

		shown := r.now()
		input, err := rd.Read(r.in, r.out)
		spent[i] += r.now().Sub(shown)
		if err != nil {
			return models.SubmitAttemptRequest{}, fmt.Errorf("read answer: %w", err)
		}

		switch input {
		case CmdQuit:
			return models.SubmitAttemptRequest{}, ErrAborted
		case CmdBack:
			if i > 0 {
				i--
			}
			continue
		case CmdTimer:
			continue
		}
		if input == "" && answers[i] != "" {
			i++
			continue
		}

		ans, err := rd.Parse(question, input)
		if err != nil {
			fmt.Fprintln(r.out, err)
			continue
		}
		answers[i] = ans
		i++
	}

	return buildSubmission(q, answers, spent, r.now().Sub(start)), nil
}

func (r *Runner) renderer(q models.Quiz, question models.Question) (Renderer, error) {
	t := question.QuestionType
	if t == "" {
		t = q.QuizType
	}
	rd, ok := r.renderers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	return rd, nil
}

func buildSubmission(q models.Quiz, answers []string, spent []time.Duration, total time.Duration) models.SubmitAttemptRequest {
	req := models.SubmitAttemptRequest{
		Answers:   make([]models.AnswerSubmission, len(q.Questions)),
		TimeTaken: int(total.Seconds()),
	}
	for i, question := range q.Questions {
		req.Answers[i] = models.AnswerSubmission{
			QuestionID: question.ID,
			Answer:     answers[i],
			TimeTaken:  int(spent[i].Seconds()),
		}
	}
	return req
}

func answered(answers []string) int {
	n := 0
	for _, a := range answers {
		if a != "" {
			n++
		}
	}
	return n
}
