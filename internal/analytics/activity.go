package analytics

import (
	"fmt"
	"math"
	"time"

	"lingo-trainer/internal/domain"
)

// Granularity selects the bucket size of an activity series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Default window sizes per granularity.
const (
	DefaultDays   = 14
	DefaultWeeks  = 8
	DefaultMonths = 6
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q", s)
}

// DefaultWindow returns the usual number of buckets shown for g.
func (g Granularity) DefaultWindow() int {
	switch g {
	case Weekly:
		return DefaultWeeks
	case Monthly:
		return DefaultMonths
	default:
		return DefaultDays
	}
}

// Series dispatches to Daily, Weekly or Monthly.
func Series(g Granularity, attempts []domain.QuizAttempt, window int, now time.Time) []domain.ActivityPoint {
	switch g {
	case Weekly:
		return WeeklyActivity(attempts, window, now)
	case Monthly:
		return MonthlyActivity(attempts, window, now)
	default:
		return DailyActivity(attempts, window, now)
	}
}

// DailyActivity returns one point per calendar day for the last days days, today included.
func DailyActivity(attempts []domain.QuizAttempt, days int, now time.Time) []domain.ActivityPoint {
	loc := now.Location()
	today := startOfDay(now, loc)
	starts := make([]time.Time, 0, max(days, 0))
	for i := days - 1; i >= 0; i-- {
		starts = append(starts, today.AddDate(0, 0, -i))
	}
	return bucketize(attempts, starts, dayLabel, func(t time.Time) time.Time {
		return startOfDay(t, loc)
	})
}

// WeeklyActivity returns one point per Monday-starting week for the last weeks weeks.
func WeeklyActivity(attempts []domain.QuizAttempt, weeks int, now time.Time) []domain.ActivityPoint {
	loc := now.Location()
	current := startOfWeek(now, loc)
	starts := make([]time.Time, 0, max(weeks, 0))
	for i := weeks - 1; i >= 0; i-- {
		starts = append(starts, current.AddDate(0, 0, -7*i))
	}
	return bucketize(attempts, starts, dayLabel, func(t time.Time) time.Time {
		return startOfWeek(t, loc)
	})
}

// MonthlyActivity returns one point per calendar month for the last months months.
func MonthlyActivity(attempts []domain.QuizAttempt, months int, now time.Time) []domain.ActivityPoint {
	loc := now.Location()
	current := startOfMonth(now, loc)
	starts := make([]time.Time, 0, max(months, 0))
	for i := months - 1; i >= 0; i-- {
		starts = append(starts, current.AddDate(0, -i, 0))
	}
	return bucketize(attempts, starts, monthLabel, func(t time.Time) time.Time {
		return startOfMonth(t, loc)
	})
}

// bucketize fills one point per start. Attempts whose bucket is not among starts are dropped.
func bucketize(attempts []domain.QuizAttempt, starts []time.Time, label func(time.Time) string, bucketOf func(time.Time) time.Time) []domain.ActivityPoint {
	points := make([]domain.ActivityPoint, len(starts))
	index := make(map[string]int, len(starts))
	for i, s := range starts {
		key := dateKey(s)
		points[i] = domain.ActivityPoint{Label: label(s), Date: key}
		index[key] = i
	}

	for _, a := range attempts {
		i, ok := index[dateKey(bucketOf(a.Timestamp))]
		if !ok {
			continue
		}
		points[i].Sessions++
		points[i].Correct += a.CorrectCount()
		points[i].Total += len(a.Results)
	}
	return points
}

// AverageAccuracy is the rounded percentage of correct results across points,
// 0 when there were no results at all.
func AverageAccuracy(points []domain.ActivityPoint) int {
	correct, total := 0, 0
	for _, p := range points {
		correct += p.Correct
		total += p.Total
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
