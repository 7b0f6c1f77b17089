package engine

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

var categoryFolder = cases.Fold()

func sameCategory(a, b string) bool {
	return categoryFolder.String(strings.TrimSpace(a)) == categoryFolder.String(strings.TrimSpace(b))
}

// ValidateQuestion checks that exactly one answer is correct and that it sits
// at CorrectAnswerIndex.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: %s has no text", ErrInvalidQuestion, q.ID)
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Answers) {
		return fmt.Errorf("%w: %s correct index %d out of range", ErrInvalidQuestion, q.ID, q.CorrectAnswerIndex)
	}
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 || !q.Answers[q.CorrectAnswerIndex].IsCorrect {
		return fmt.Errorf("%w: %s must have exactly one correct answer at index %d", ErrInvalidQuestion, q.ID, q.CorrectAnswerIndex)
	}
	return nil
}

// RemainingInCategory lists draw-pool questions in category, case-insensitively.
// An empty category matches everything.
func RemainingInCategory(s State, category string) []Question {
	out := []Question{}
	for _, q := range s.RemainingQuestions {
		if category == "" || sameCategory(q.Category, category) {
			out = append(out, q.clone())
		}
	}
	return out
}

// Categories returns the distinct categories still in the draw pool, in
// first-seen order.
func Categories(s State) []string {
	var out []string
	for _, q := range s.RemainingQuestions {
		if q.Category == "" {
			continue
		}
		if slices.ContainsFunc(out, func(c string) bool { return sameCategory(c, q.Category) }) {
			continue
		}
		out = append(out, q.Category)
	}
	return out
}

func setCurrentQuestion(s *State, id string) ([]Event, error) {
	i := questionIndex(s.Questions, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	// The wheel draws from the category it landed on.
	if s.CurrentRound == RoundWheel && s.SelectedCategory != "" &&
		!sameCategory(s.Questions[i].Category, s.SelectedCategory) {
		return nil, fmt.Errorf("%w: %s is %q, wheel is on %q",
			ErrCategoryMismatch, id, s.Questions[i].Category, s.SelectedCategory)
	}
	s.Questions[i].Used = true
	s.RemainingQuestions = withoutQuestion(s.RemainingQuestions, id)
	current := s.Questions[i].clone()
	s.CurrentQuestion = &current

	return []Event{
		{Type: EvtQuestionSelected, QuestionID: id, Round: s.CurrentRound},
		{Type: EvtQuestionsChanged},
	}, nil
}

// revertQuestion returns the question to the draw pool. The master copy keeps
// Used=true, so the persisted catalogue still reports it as used.
func revertQuestion(s *State, id string) ([]Event, error) {
	i := questionIndex(s.Questions, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	if questionIndex(s.RemainingQuestions, id) < 0 {
		q := s.Questions[i].clone()
		q.Used = false
		s.RemainingQuestions = append(s.RemainingQuestions, q)
	}
	if s.CurrentQuestion != nil && s.CurrentQuestion.ID == id {
		s.CurrentQuestion = nil
	}
	return []Event{{Type: EvtQuestionReverted, QuestionID: id}}, nil
}

func markQuestionUsed(s *State, id string) ([]Event, error) {
	i := questionIndex(s.Questions, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	s.Questions[i].Used = true
	s.RemainingQuestions = withoutQuestion(s.RemainingQuestions, id)
	return []Event{{Type: EvtQuestionsChanged, QuestionID: id}}, nil
}

func addQuestion(s *State, q Question) ([]Event, error) {
	if err := ValidateQuestion(q); err != nil {
		return nil, err
	}
	if questionIndex(s.Questions, q.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
	}
	s.Questions = append(s.Questions, q.clone())
	if !q.Used {
		s.RemainingQuestions = append(s.RemainingQuestions, q.clone())
	}
	return []Event{{Type: EvtQuestionsChanged, QuestionID: q.ID}}, nil
}

// updateQuestion replaces content in place. The used flag of the master
// record wins over whatever the caller sent.
func updateQuestion(s *State, q Question) ([]Event, error) {
	if err := ValidateQuestion(q); err != nil {
		return nil, err
	}
	i := questionIndex(s.Questions, q.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, q.ID)
	}
	q.Used = s.Questions[i].Used
	s.Questions[i] = q.clone()
	if j := questionIndex(s.RemainingQuestions, q.ID); j >= 0 {
		s.RemainingQuestions[j] = q.clone()
	}
	if s.CurrentQuestion != nil && s.CurrentQuestion.ID == q.ID {
		current := q.clone()
		s.CurrentQuestion = &current
	}
	return []Event{{Type: EvtQuestionsChanged, QuestionID: q.ID}}, nil
}

func removeQuestion(s *State, id string) ([]Event, error) {
	if questionIndex(s.Questions, id) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownQuestion, id)
	}
	s.Questions = withoutQuestion(s.Questions, id)
	s.RemainingQuestions = withoutQuestion(s.RemainingQuestions, id)
	if s.CurrentQuestion != nil && s.CurrentQuestion.ID == id {
		s.CurrentQuestion = nil
	}
	return []Event{{Type: EvtQuestionsChanged, QuestionID: id}}, nil
}

// loadQuestions swaps the whole catalogue, e.g. after reading it from storage.
// It is not persisted back.
func loadQuestions(s *State, qs []Question) ([]Event, error) {
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		if err := ValidateQuestion(q); err != nil {
			return nil, err
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestion, q.ID)
		}
		seen[q.ID] = true
	}
	s.Questions = cloneQuestions(qs)
	if s.Questions == nil {
		s.Questions = []Question{}
	}
	s.RemainingQuestions = unusedQuestions(s.Questions)
	s.CurrentQuestion = nil
	return nil, nil
}

func resetQuestionPool(s *State) []Event {
	for i := range s.Questions {
		s.Questions[i].Used = false
	}
	s.RemainingQuestions = unusedQuestions(s.Questions)
	s.CurrentQuestion = nil
	return []Event{{Type: EvtQuestionsChanged}}
}

func setWheelSpinning(s *State, spinning bool) []Event {
	s.WheelSpinning = spinning
	reason := "stopped"
	if spinning {
		reason = "spinning"
	}
	return []Event{{Type: EvtWheelSpinning, Round: s.CurrentRound, Reason: reason}}
}

// selectCategory records where the wheel stopped. An empty category clears
// the selection; otherwise the draw pool must still hold a question in it.
func selectCategory(s *State, category string) ([]Event, error) {
	category = strings.TrimSpace(category)
	if category != "" && len(RemainingInCategory(*s, category)) == 0 {
		return nil, fmt.Errorf("%w: no questions left in %q", ErrUnknownQuestion, category)
	}
	s.SelectedCategory = category
	s.WheelSpinning = false
	return []Event{{Type: EvtCategorySelected, Round: s.CurrentRound, Category: s.SelectedCategory}}, nil
}
