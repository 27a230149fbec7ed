package quiz

import "github.com/example/nurseprep/pkg/models"

// Thresholds for the adaptive difficulty controller, applied to the
// running accuracy over answered questions.
const (
	EscalateAccuracy   = 0.80
	DeescalateAccuracy = 0.50

	// AdaptiveMinSample is how many answers the controller needs before
	// it moves the tier; below this the starting tier holds
	AdaptiveMinSample = 4
)

var tierOrder = []models.Difficulty{
	models.DifficultyEasy,
	models.DifficultyMedium,
	models.DifficultyHard,
}

func tierIndex(d models.Difficulty) int {
	for i, t := range tierOrder {
		if t == d {
			return i
		}
	}
	return 1 // unknown tiers behave as medium
}

// NextTier returns the difficulty tier for the next question given the
// current tier and the running tally of answered questions. Once the
// minimum sample is reached, accuracy at or above 80% escalates one
// tier, below 50% de-escalates one tier, anything between holds. Easy
// is the floor and hard the ceiling.
func NextTier(current models.Difficulty, answered, correct int) models.Difficulty {
	if answered < AdaptiveMinSample {
		return current
	}
	idx := tierIndex(current)
	accuracy := float64(correct) / float64(answered)
	switch {
	case accuracy >= EscalateAccuracy && idx < len(tierOrder)-1:
		idx++
	case accuracy < DeescalateAccuracy && idx > 0:
		idx--
	}
	return tierOrder[idx]
}

// runningTally counts answered questions and how many of them were
// answered correctly, using the same correctness rule as the scorer.
func runningTally(questions []models.Question, answers map[string]models.Answer) (answered, correct int) {
	for _, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		answered++
		if answerCorrect(&q, ans) {
			correct++
		}
	}
	return answered, correct
}
