// Package quiz holds the pure parts of test taking: question pool
// selection, sampling and grading. Nothing here touches the database.
package quiz

import "stepwise/backend/models"

// CalculateTestBall returns what one correct answer is worth at the given
// level. Any value other than easy or medium earns the hard bonus, which is
// also what a question type lands on when it is passed by mistake.
func CalculateTestBall(level string, base float64) float64 {
	switch level {
	case models.LevelEasy:
		return base
	case models.LevelMedium:
		return base + 1
	default:
		return base + 2
	}
}

// PoolLevels returns the question levels a test of the given type draws from.
func PoolLevels(testType string) []string {
	switch testType {
	case models.TestTypeMidterm:
		return []string{models.LevelEasy, models.LevelMedium}
	case models.TestTypeFinal:
		return []string{models.LevelHard}
	default:
		return nil
	}
}
