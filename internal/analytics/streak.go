package analytics

import (
	"time"

	"lingo-trainer/internal/domain"
)

// maxStreakWalk bounds how far back CurrentStreak looks.
const maxStreakWalk = 365

// CurrentStreak counts consecutive days with at least one attempt, walking back from
// today. A day without attempts today neither breaks nor extends the streak, so it
// survives until the learner's first session of the day.
func CurrentStreak(attempts []domain.QuizAttempt, now time.Time) int {
	if len(attempts) == 0 {
		return 0
	}
	loc := now.Location()
	active := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		active[dateKey(startOfDay(a.Timestamp, loc))] = struct{}{}
	}

	today := startOfDay(now, loc)
	streak := 0
	for i := 0; i < maxStreakWalk; i++ {
		_, ok := active[dateKey(today.AddDate(0, 0, -i))]
		if !ok {
			if i == 0 {
				continue
			}
			break
		}
		streak++
	}
	return streak
}
