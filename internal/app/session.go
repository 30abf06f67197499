package app

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"lingo-trainer/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultQuestionLimit is the countdown started for every question.
const DefaultQuestionLimit = 20 * time.Second

// State is the controller's position in the session state machine.
type State string

const (
	StateAnswering State = "answering"
	StateSubmitted State = "submitted"
	StateCompleted State = "completed"
	StateClosed    State = "closed"
)

// Feedback is the verdict shown for the current question.
type Feedback string

const (
	FeedbackIdle      Feedback = "idle"
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// AttemptRecorder persists finished attempts.
type AttemptRecorder interface {
	Append(ctx context.Context, attempt domain.QuizAttempt) []domain.QuizAttempt
}

// Shuffler returns a permutation of words. It must not modify its input.
type Shuffler func(words []string) []string

// RandomShuffle is a Fisher-Yates shuffle of a copy of words.
func RandomShuffle(words []string) []string {
	out := append([]string(nil), words...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// SessionOptions tune a Controller. Zero values pick the defaults.
type SessionOptions struct {
	QuestionLimit time.Duration
	Clock         Clock
	Shuffle       Shuffler
	NewID         func() string
	// OnExpire runs after a countdown expiry submitted the current question.
	// It is called without the controller lock held.
	OnExpire func(Snapshot)
	Logger   *zap.Logger
}

// Snapshot is a consistent read of the controller state.
type Snapshot struct {
	QuizID       string
	Index        int
	Total        int
	Score        int
	State        State
	Feedback     Feedback
	Question     domain.Question
	Presentation []string
	Input        domain.Answer
	Remaining    time.Duration
	Results      []domain.QuestionResult
}

// Controller drives one run through a quiz: one question at a time, a countdown per
// question, and a single attempt written when the last question is advanced past.
//
// A Controller is discarded after completion or Close; start a new one per run.
type Controller struct {
	mu sync.Mutex

	quiz     domain.Quiz
	recorder AttemptRecorder
	clock    Clock
	limit    time.Duration
	newID    func() string
	onExpire func(Snapshot)
	log      *zap.Logger

	// shuffled word order per ordering question id, fixed for the whole session
	shuffled map[string][]string

	index     int
	state     State
	feedback  Feedback
	input     domain.Answer
	picked    []int
	score     int
	results   []domain.QuestionResult
	startedAt time.Time
	deadline  time.Time
	timer     Timer
	// generation invalidates expiries of countdowns that were already replaced
	generation uint64
}

// NewController starts a session on the first question of quiz.
// The quiz must have at least one question; QuizService.StartSession checks that.
func NewController(quiz domain.Quiz, recorder AttemptRecorder, opts SessionOptions) *Controller {
	if opts.QuestionLimit <= 0 {
		opts.QuestionLimit = DefaultQuestionLimit
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Shuffle == nil {
		opts.Shuffle = RandomShuffle
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Controller{
		quiz:     quiz,
		recorder: recorder,
		clock:    opts.Clock,
		limit:    opts.QuestionLimit,
		newID:    opts.NewID,
		onExpire: opts.OnExpire,
		log:      opts.Logger.With(zap.String("quiz_id", quiz.ID)),
		shuffled: make(map[string][]string),
	}
	for _, q := range quiz.Questions {
		if ord, ok := q.Body.(domain.Ordering); ok {
			c.shuffled[q.ID] = opts.Shuffle(ord.Words)
		}
	}

	c.mu.Lock()
	c.enterQuestionLocked(0)
	c.mu.Unlock()
	return c
}

func (c *Controller) enterQuestionLocked(i int) {
	c.index = i
	c.state = StateAnswering
	c.feedback = FeedbackIdle
	c.input = domain.Answer{}
	c.picked = nil

	now := c.clock.Now()
	if i == 0 {
		c.startedAt = now
	}
	c.generation++
	gen := c.generation
	c.deadline = now.Add(c.limit)
	c.timer = c.clock.AfterFunc(c.limit, func() { c.expire(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.generation++
}

// expire treats an elapsed countdown as a submission of the current input.
func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.state != StateAnswering {
		c.mu.Unlock()
		return
	}
	c.log.Debug("question timed out", zap.Int("index", c.index))
	c.submitLocked()
	snap := c.snapshotLocked()
	hook := c.onExpire
	c.mu.Unlock()

	if hook != nil {
		hook(snap)
	}
}

// SelectOption records the chosen multiple-choice option.
func (c *Controller) SelectOption(optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAnswering {
		c.input.OptionID = optionID
	}
}

// SetText records typed input for fill-in and listening questions.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAnswering {
		c.input.Text = text
	}
}

// PickWord appends the word at index i of the presented (shuffled) order.
// Each presented word can be picked once; it reports whether the pick was taken.
func (c *Controller) PickWord(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return false
	}
	words := c.shuffled[c.currentLocked().ID]
	if i < 0 || i >= len(words) {
		return false
	}
	for _, p := range c.picked {
		if p == i {
			return false
		}
	}
	c.picked = append(c.picked, i)
	c.input.Words = append(c.input.Words, words[i])
	return true
}

// UndoWord drops the last picked word.
func (c *Controller) UndoWord() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering || len(c.picked) == 0 {
		return
	}
	c.picked = c.picked[:len(c.picked)-1]
	c.input.Words = c.input.Words[:len(c.input.Words)-1]
}

// ClearWords empties the ordering buffer.
func (c *Controller) ClearWords() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAnswering {
		c.picked = nil
		c.input.Words = nil
	}
}

// SetAnswer replaces the whole answer in progress, e.g. from a client that keeps its
// own input state. Ordering words are taken as given.
func (c *Controller) SetAnswer(a domain.Answer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return
	}
	c.input = cloneAnswer(a)
	c.picked = nil
}

// Submit records answer and submits the current question. It is a no-op once the
// question was submitted; it reports whether this call recorded a result.
func (c *Controller) Submit(answer domain.Answer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAnswering {
		return false
	}
	c.input = cloneAnswer(answer)
	c.picked = nil
	return c.submitLocked()
}

// SubmitCurrent submits whatever input was recorded so far.
func (c *Controller) SubmitCurrent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitLocked()
}

func (c *Controller) submitLocked() bool {
	if c.state != StateAnswering {
		return false
	}
	c.stopTimerLocked()

	result := c.currentLocked().Result(c.input)
	c.results = append(c.results, result)
	if result.Correct {
		c.score++
		c.feedback = FeedbackCorrect
	} else {
		c.feedback = FeedbackIncorrect
	}
	c.state = StateSubmitted
	return true
}

// Advance moves past a submitted question. After the last question it writes the
// attempt and returns it; otherwise it returns nil and the next question is current.
func (c *Controller) Advance(ctx context.Context) (*domain.QuizAttempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateAnswering:
		return nil, domain.ErrNotSubmitted
	case StateCompleted:
		return nil, domain.ErrSessionCompleted
	case StateClosed:
		return nil, domain.ErrSessionClosed
	}

	if c.index < len(c.quiz.Questions)-1 {
		c.enterQuestionLocked(c.index + 1)
		return nil, nil
	}

	duration := int(math.Round(c.clock.Now().Sub(c.startedAt).Seconds()))
	attempt := domain.QuizAttempt{
		ID:          c.newID(),
		QuizID:      c.quiz.ID,
		Timestamp:   c.startedAt,
		DurationSec: &duration,
		Score:       c.score,
		Results:     append([]domain.QuestionResult(nil), c.results...),
	}
	c.state = StateCompleted
	if c.recorder != nil {
		c.recorder.Append(ctx, attempt)
	}
	c.log.Info("quiz completed",
		zap.String("attempt_id", attempt.ID),
		zap.Int("score", attempt.Score),
		zap.Int("questions", len(attempt.Results)),
		zap.Int("duration_sec", duration),
	)
	return &attempt, nil
}

// Close abandons the session. The countdown is cancelled and nothing is persisted.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateCompleted || c.state == StateClosed {
		return
	}
	c.stopTimerLocked()
	c.state = StateClosed
	c.log.Debug("quiz session abandoned", zap.Int("index", c.index))
}

func (c *Controller) currentLocked() domain.Question {
	return c.quiz.Questions[c.index]
}

// CurrentQuestion returns the question being answered or last submitted.
func (c *Controller) CurrentQuestion() domain.Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

func (c *Controller) Total() int {
	return len(c.quiz.Questions)
}

func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submitted reports whether the current question already has a result.
func (c *Controller) Submitted() bool {
	return c.State() == StateSubmitted
}

func (c *Controller) Feedback() Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.feedback
}

func (c *Controller) Results() []domain.QuestionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.QuestionResult(nil), c.results...)
}

func (c *Controller) Input() domain.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAnswer(c.input)
}

// Presentation is the shuffled word order shown for the current ordering question.
func (c *Controller) Presentation() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.shuffled[c.currentLocked().ID]...)
}

// Remaining is the time left on the current countdown, zero once submitted.
func (c *Controller) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Controller) remainingLocked() time.Duration {
	if c.state != StateAnswering {
		return 0
	}
	return max(c.deadline.Sub(c.clock.Now()), 0)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	q := c.currentLocked()
	return Snapshot{
		QuizID:       c.quiz.ID,
		Index:        c.index,
		Total:        len(c.quiz.Questions),
		Score:        c.score,
		State:        c.state,
		Feedback:     c.feedback,
		Question:     q,
		Presentation: append([]string(nil), c.shuffled[q.ID]...),
		Input:        cloneAnswer(c.input),
		Remaining:    c.remainingLocked(),
		Results:      append([]domain.QuestionResult(nil), c.results...),
	}
}

func cloneAnswer(a domain.Answer) domain.Answer {
	a.Words = append([]string(nil), a.Words...)
	return a
}
