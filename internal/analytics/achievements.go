package analytics

import "lingo-trainer/internal/domain"

// Stats are the aggregates achievements are matched against.
type Stats struct {
	Streak           int `json:"streak"`
	QuizzesCompleted int `json:"quizzesCompleted"`
	WordsMastered    int `json:"wordsMastered"`
}

// QuestionVocabIndex maps question ids to the vocabulary item they drill.
// Questions without a vocabulary link map to "".
func QuestionVocabIndex(quizzes []domain.Quiz) map[string]string {
	index := make(map[string]string)
	for _, quiz := range quizzes {
		for _, q := range quiz.Questions {
			index[q.ID] = q.RelatedVocabID
		}
	}
	return index
}

// WordsMastered counts distinct vocabulary items answered correctly at least once.
// A correct result whose question has no vocabulary link counts under its question id.
func WordsMastered(attempts []domain.QuizAttempt, index map[string]string) int {
	words := make(map[string]struct{})
	for _, a := range attempts {
		for _, r := range a.Results {
			if !r.Correct {
				continue
			}
			id := index[r.QuestionID]
			if id == "" {
				id = r.QuestionID
			}
			words[id] = struct{}{}
		}
	}
	return len(words)
}

// EvaluateAchievements derives the unlock flag of every achievement.
// Unknown criteria types stay locked.
func EvaluateAchievements(achievements []domain.Achievement, stats Stats) []domain.AchievementState {
	states := make([]domain.AchievementState, 0, len(achievements))
	for _, a := range achievements {
		states = append(states, domain.AchievementState{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Icon:        a.Icon,
			Unlocked:    unlocked(a.Criteria, stats),
		})
	}
	return states
}

func unlocked(c domain.AchievementCriteria, stats Stats) bool {
	switch c.Type {
	case domain.CriteriaStreakDays:
		return stats.Streak >= c.Target
	case domain.CriteriaQuizzesCompleted:
		return stats.QuizzesCompleted >= c.Target
	case domain.CriteriaWordsMastered:
		return stats.WordsMastered >= c.Target
	default:
		return false
	}
}
