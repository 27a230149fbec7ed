package quiz

import (
	"testing"

	"github.com/example/nurseprep/pkg/models"
)

func TestNextTier(t *testing.T) {
	cases := []struct {
		name     string
		current  models.Difficulty
		answered int
		correct  int
		want     models.Difficulty
	}{
		{"holds below minimum sample", models.DifficultyMedium, 3, 3, models.DifficultyMedium},
		{"escalates at 80 percent", models.DifficultyMedium, 5, 4, models.DifficultyHard},
		{"escalates on perfect run", models.DifficultyMedium, 4, 4, models.DifficultyHard},
		{"holds between thresholds", models.DifficultyMedium, 4, 3, models.DifficultyMedium},
		{"de-escalates below 50 percent", models.DifficultyMedium, 4, 1, models.DifficultyEasy},
		{"holds at exactly 50 percent", models.DifficultyMedium, 4, 2, models.DifficultyMedium},
		{"hard is the ceiling", models.DifficultyHard, 4, 4, models.DifficultyHard},
		{"easy is the floor", models.DifficultyEasy, 4, 0, models.DifficultyEasy},
		{"unknown tier behaves as medium", models.Difficulty("expert"), 4, 4, models.DifficultyHard},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextTier(tc.current, tc.answered, tc.correct)
			if got != tc.want {
				t.Errorf("NextTier(%s, %d, %d) = %s, want %s",
					tc.current, tc.answered, tc.correct, got, tc.want)
			}
		})
	}
}

func TestRunningTally(t *testing.T) {
	questions := []models.Question{
		singleSelect("q1", "pharm", "a"),
		singleSelect("q2", "pharm", "b"),
		singleSelect("q3", "pharm", "c"),
	}
	answers := map[string]models.Answer{
		"q1": answer("q1", "a"), // correct
		"q2": answer("q2", "a"), // wrong
	}

	answered, correct := runningTally(questions, answers)
	if answered != 2 {
		t.Errorf("expected 2 answered, got %d", answered)
	}
	if correct != 1 {
		t.Errorf("expected 1 correct, got %d", correct)
	}
}

func TestDrawFromReserve(t *testing.T) {
	reserve := map[models.Difficulty][]models.Question{
		models.DifficultyEasy: {singleSelect("e1", "pharm", "a")},
		models.DifficultyHard: {singleSelect("h1", "pharm", "a")},
	}

	// Medium is empty: nearest populated tier wins, easier side first
	q, ok := drawFromReserve(reserve, models.DifficultyMedium)
	if !ok || q.ID != "e1" {
		t.Errorf("expected fallback to e1, got %v ok=%v", q.ID, ok)
	}

	q, ok = drawFromReserve(reserve, models.DifficultyMedium)
	if !ok || q.ID != "h1" {
		t.Errorf("expected fallback to h1, got %v ok=%v", q.ID, ok)
	}

	_, ok = drawFromReserve(reserve, models.DifficultyMedium)
	if ok {
		t.Error("expected an empty reserve to report no draw")
	}
}
