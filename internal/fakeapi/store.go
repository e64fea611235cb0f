package fakeapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pdflearn/internal/client/models"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("already exists")
)

type account struct {
	user         models.User
	passwordHash []byte
}

type attemptRecord struct {
	owner   int64
	attempt models.Attempt
}

type sessionRecord struct {
	owner   int64
	session models.StudySession
}

type goalRecord struct {
	owner int64
	goal  models.LearningGoal
}

type progressRecord struct {
	owner    int64
	progress models.DocumentProgress
}

// store keeps every resource in memory, scoped by owner user id.
type store struct {
	mu sync.Mutex

	nextID int64

	accounts   map[int64]*account
	byUsername map[string]int64
	revoked    map[string]struct{}

	documents map[int64]map[int64]*models.Document // owner -> id -> doc
	quizzes   map[int64]*models.Quiz
	attempts  map[int64]*attemptRecord
	sessions  map[int64]*sessionRecord
	goals     map[int64]*goalRecord
	progress  map[int64]*progressRecord // document id -> progress
}

func newStore() *store {
	return &store{
		accounts:   make(map[int64]*account),
		byUsername: make(map[string]int64),
		revoked:    make(map[string]struct{}),
		documents:  make(map[int64]map[int64]*models.Document),
		quizzes:    make(map[int64]*models.Quiz),
		attempts:   make(map[int64]*attemptRecord),
		sessions:   make(map[int64]*sessionRecord),
		goals:      make(map[int64]*goalRecord),
		progress:   make(map[int64]*progressRecord),
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) createAccount(u models.User, hash []byte) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, ok := s.byUsername[key]; ok {
		return models.User{}, errConflict
	}
	u.ID = s.id()
	s.accounts[u.ID] = &account{user: u, passwordHash: hash}
	s.byUsername[key] = u.ID
	return u, nil
}

func (s *store) accountByUsername(username string) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, errNotFound
	}
	a := *s.accounts[id]
	return &a, nil
}

func (s *store) user(id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, errNotFound
	}
	return a.user, nil
}

func (s *store) revoke(jti string) {
	s.mu.Lock()
	s.revoked[jti] = struct{}{}
	s.mu.Unlock()
}

func (s *store) isRevoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok
}

func (s *store) addDocument(owner int64, d models.Document) models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.ID = s.id()
	for i := range d.Chunks {
		d.Chunks[i].ID = s.id()
	}
	if s.documents[owner] == nil {
		s.documents[owner] = make(map[int64]*models.Document)
	}
	s.documents[owner][d.ID] = &d
	return d
}

func (s *store) countDocuments(owner int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.documents[owner])
}

func (s *store) listDocuments(owner int64) []models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Document, 0, len(s.documents[owner]))
	for _, d := range s.documents[owner] {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) || (out[i].UploadedAt.Equal(out[j].UploadedAt) && out[i].ID > out[j].ID) })
	return out
}

func (s *store) document(owner, id int64) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[owner][id]
	if !ok {
		return models.Document{}, errNotFound
	}
	return *d, nil
}

func (s *store) updateDocument(owner, id int64, fn func(*models.Document)) (models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.documents[owner][id]
	if !ok {
		return models.Document{}, errNotFound
	}
	fn(d)
	return *d, nil
}

func (s *store) deleteDocument(owner, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[owner][id]; !ok {
		return errNotFound
	}
	delete(s.documents[owner], id)
	for qid, q := range s.quizzes {
		if q.Document == id {
			delete(s.quizzes, qid)
		}
	}
	delete(s.progress, id)
	return nil
}

func (s *store) addQuiz(q models.Quiz) models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.ID = s.id()
	for i := range q.Questions {
		q.Questions[i].ID = s.id()
	}
	q.QuestionsCount = len(q.Questions)
	s.quizzes[q.ID] = &q
	return q
}

// quiz returns q only when its document belongs to owner.
func (s *store) quiz(owner, id int64) (models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quizzes[id]
	if !ok {
		return models.Quiz{}, errNotFound
	}
	if _, mine := s.documents[owner][q.Document]; !mine {
		return models.Quiz{}, errNotFound
	}
	return *q, nil
}

func (s *store) listQuizzes(owner int64) []models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Quiz, 0)
	for _, q := range s.quizzes {
		if _, mine := s.documents[owner][q.Document]; mine {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *store) addAttempt(owner int64, a models.Attempt) models.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.id()
	s.attempts[a.ID] = &attemptRecord{owner: owner, attempt: a}
	return a
}

func (s *store) attempt(owner, id int64) (models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.attempts[id]
	if !ok || r.owner != owner {
		return models.Attempt{}, errNotFound
	}
	return r.attempt, nil
}

func (s *store) saveAttempt(owner int64, a models.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range a.UserAnswers {
		a.UserAnswers[i].ID = s.id()
	}
	s.attempts[a.ID] = &attemptRecord{owner: owner, attempt: a}
}

func (s *store) listAttempts(owner int64) []models.Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Attempt, 0)
	for _, r := range s.attempts {
		if r.owner == owner {
			out = append(out, r.attempt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *store) addSession(owner int64, ss models.StudySession) models.StudySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss.ID = s.id()
	s.sessions[ss.ID] = &sessionRecord{owner: owner, session: ss}
	return ss
}

func (s *store) updateSession(owner, id int64, fn func(*models.StudySession)) (models.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.sessions[id]
	if !ok || r.owner != owner {
		return models.StudySession{}, errNotFound
	}
	fn(&r.session)
	return r.session, nil
}

func (s *store) listSessions(owner int64) []models.StudySession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.StudySession, 0)
	for _, r := range s.sessions {
		if r.owner == owner {
			out = append(out, r.session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (s *store) addGoal(owner int64, g models.LearningGoal) models.LearningGoal {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.id()
	s.goals[g.ID] = &goalRecord{owner: owner, goal: g}
	return g
}

func (s *store) updateGoal(owner, id int64, fn func(*models.LearningGoal)) (models.LearningGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.goals[id]
	if !ok || r.owner != owner {
		return models.LearningGoal{}, errNotFound
	}
	fn(&r.goal)
	return r.goal, nil
}

func (s *store) listGoals(owner int64) []models.LearningGoal {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LearningGoal, 0)
	for _, r := range s.goals {
		if r.owner == owner {
			out = append(out, r.goal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// recordProgress folds a graded attempt into the per-document progress row.
func (s *store) recordProgress(owner, docID int64, title string, score, total int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.progress[docID]
	if !ok {
		r = &progressRecord{owner: owner, progress: models.DocumentProgress{
			ID: s.id(), Document: docID, DocumentTitle: title,
		}}
		s.progress[docID] = r
	}

	p := &r.progress
	p.AverageScore = (p.AverageScore*float64(p.TotalQuizzesTaken) + models.Percentage(score, total)) / float64(p.TotalQuizzesTaken+1)
	p.TotalQuizzesTaken++
	p.TotalQuestionsAttempted += total
	p.TotalCorrectAnswers += score
	p.OverallScore = models.Percentage(p.TotalCorrectAnswers, p.TotalQuestionsAttempted)
	p.CompletionPercentage = min(float64(p.TotalQuizzesTaken)*10, 100)
	p.LastActivity = &at
}

func (s *store) listProgress(owner int64) []models.DocumentProgress {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.DocumentProgress, 0)
	for _, r := range s.progress {
		if r.owner == owner {
			out = append(out, r.progress)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Document < out[j].Document })
	return out
}
