package quiz

import (
	"math"
	"time"

	"github.com/example/nurseprep/pkg/models"
)

// DefaultPassThreshold is the score percentage required to pass
const DefaultPassThreshold = 75

// answerCorrect applies the correctness rule for one question.
// Single-select: the selected option must equal the unique correct
// option. Multi-select: the submitted set must equal the correct set
// exactly, with no partial credit.
func answerCorrect(q *models.Question, ans models.Answer) bool {
	correct := q.CorrectOptionIDs()
	if len(correct) == 0 {
		return false
	}
	return sameOptionSet(ans.SelectedOptionIDs, correct)
}

// sameOptionSet reports whether a and b contain the same option ids,
// ignoring order and duplicates
func sameOptionSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	if len(set) != len(b) {
		return false
	}
	for _, id := range b {
		if !set[id] {
			return false
		}
	}
	return true
}

// Score turns a frozen session's answers into a QuizResult. Unanswered
// questions count as incorrect. The computation is deterministic: the
// same session state always produces an identical result.
func Score(s *Session, passThreshold int, completedAt time.Time, autoSubmit bool) models.QuizResult {
	total := len(s.Questions)
	correctCount := 0
	questionResults := make([]models.QuestionResult, 0, total)
	categories := make(map[string]models.CategoryPerformance)

	for i := range s.Questions {
		q := &s.Questions[i]
		ans, answered := s.Answers[q.ID]

		qr := models.QuestionResult{
			QuestionID:       q.ID,
			Prompt:           q.Prompt,
			CorrectOptionIDs: q.CorrectOptionIDs(),
			Answered:         answered,
			Explanation:      q.Explanation,
		}
		if answered {
			qr.SelectedOptionIDs = ans.SelectedOptionIDs
			qr.Correct = answerCorrect(q, ans)
		}
		if qr.Correct {
			correctCount++
		}
		questionResults = append(questionResults, qr)

		perf := categories[q.Category]
		perf.Total++
		if qr.Correct {
			perf.Correct++
		}
		categories[q.Category] = perf
	}

	for tag, perf := range categories {
		if perf.Total > 0 {
			perf.Percentage = int(math.Round(100 * float64(perf.Correct) / float64(perf.Total)))
		}
		categories[tag] = perf
	}

	scorePercent := 0
	if total > 0 {
		scorePercent = int(math.Round(100 * float64(correctCount) / float64(total)))
	}

	return models.QuizResult{
		SessionID:      s.ID,
		ScorePercent:   scorePercent,
		CorrectCount:   correctCount,
		TotalQuestions: total,
		Passed:         scorePercent >= passThreshold,
		Questions:      questionResults,
		Categories:     categories,
		TimeTakenSec:   int(completedAt.Sub(s.StartedAt).Seconds()),
		AutoSubmit:     autoSubmit,
		CompletedAt:    completedAt,
	}
}
