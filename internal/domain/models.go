package domain

import "time"

// VocabularyItem is immutable seed content.
type VocabularyItem struct {
	ID           string `json:"id"`
	Term         string `json:"term"`
	Translation  string `json:"translation"`
	PartOfSpeech string `json:"partOfSpeech,omitempty"`
	Example      string `json:"example,omitempty"`
	AudioURL     string `json:"audioUrl,omitempty"`
}

// VocabularySet groups items by topic and level.
type VocabularySet struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Level       string           `json:"level,omitempty"`
	Items       []VocabularyItem `json:"items"`
}

// VocabularyPayload is the versioned vocabulary seed document.
type VocabularyPayload struct {
	Version int             `json:"version"`
	Sets    []VocabularySet `json:"sets"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Level     string     `json:"level,omitempty"`
	Questions []Question `json:"questions"`
}

// QuestionResult is recorded once per answered question and never changed afterwards.
type QuestionResult struct {
	QuestionID       string `json:"questionId"`
	Correct          bool   `json:"correct"`
	UserAnswer       string `json:"userAnswer,omitempty"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
}

// QuizAttempt is one completed run through a quiz.
// Score always equals the number of correct results.
type QuizAttempt struct {
	ID          string           `json:"id"`
	QuizID      string           `json:"quizId"`
	Timestamp   time.Time        `json:"timestamp"`
	DurationSec *int             `json:"durationSec,omitempty"`
	Score       int              `json:"score"`
	Results     []QuestionResult `json:"results"`
}

// CorrectCount counts the correct results of the attempt.
func (a QuizAttempt) CorrectCount() int {
	n := 0
	for _, r := range a.Results {
		if r.Correct {
			n++
		}
	}
	return n
}

// ProgressEntry is a manually tracked study log line.
type ProgressEntry struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	WordsReviewed    int    `json:"wordsReviewed"`
	QuizzesCompleted int    `json:"quizzesCompleted"`
}

// ActivityPoint is one bucket of an activity series. Never persisted.
type ActivityPoint struct {
	Label    string `json:"label"`
	Date     string `json:"date"`
	Sessions int    `json:"sessions"`
	Correct  int    `json:"correct"`
	Total    int    `json:"total"`
}

// Criteria kinds understood by the achievement evaluator.
const (
	CriteriaStreakDays       = "streak_days"
	CriteriaQuizzesCompleted = "quizzes_completed"
	CriteriaWordsMastered    = "words_mastered"
)

// AchievementCriteria is a tagged threshold. Unknown types decode fine but never unlock.
type AchievementCriteria struct {
	Type   string `json:"type"`
	Target int    `json:"target"`
}

// Achievement is a catalogue entry; unlock state is derived.
type Achievement struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Icon        string              `json:"icon,omitempty"`
	Criteria    AchievementCriteria `json:"criteria"`
}

// AchievementsPayload is the versioned achievement seed document.
type AchievementsPayload struct {
	Version      int           `json:"version"`
	Achievements []Achievement `json:"achievements"`
}

// AchievementState is an achievement together with its derived unlock flag.
type AchievementState struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Unlocked    bool   `json:"unlocked"`
}
