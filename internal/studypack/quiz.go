package studypack

import "math"

// QuizResult is the outcome of a quiz run.
type QuizResult struct {
	Correct    int
	Total      int
	Percentage int
}

// Score grades answers keyed by question position.
func (q Quiz) Score(answers map[int]int) QuizResult {
	res := QuizResult{Total: len(q.Questions)}
	for i, question := range q.Questions {
		if sel, ok := answers[i]; ok && sel == question.CorrectIndex {
			res.Correct++
		}
	}
	res.Percentage = percentage(res.Correct, res.Total)
	return res
}

func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// QuizAttempt walks through a quiz one question at a time.
// Each question can be answered once; the score accumulates as it goes.
type QuizAttempt struct {
	quiz     Quiz
	index    int
	selected int
	answered bool
	score    int
	finished bool
}

// NewQuizAttempt starts an attempt at the first question.
func NewQuizAttempt(q Quiz) *QuizAttempt {
	return &QuizAttempt{quiz: q, selected: -1, finished: len(q.Questions) == 0}
}

// Current returns the active question and its position.
func (a *QuizAttempt) Current() (QuizQuestion, int, bool) {
	if a.finished || a.index >= len(a.quiz.Questions) {
		return QuizQuestion{}, a.index, false
	}
	return a.quiz.Questions[a.index], a.index, true
}

// Answer selects an option for the current question. A second answer to the
// same question is ignored. It reports whether the choice was correct.
func (a *QuizAttempt) Answer(option int) (correct bool, accepted bool) {
	q, _, ok := a.Current()
	if !ok || a.answered || option < 0 || option >= len(q.Options) {
		return false, false
	}
	a.selected = option
	a.answered = true
	if option == q.CorrectIndex {
		a.score++
		return true, true
	}
	return false, true
}

// Next advances to the following question, or finishes after the last one.
func (a *QuizAttempt) Next() {
	if a.finished {
		return
	}
	if a.index < len(a.quiz.Questions)-1 {
		a.index++
		a.answered = false
		a.selected = -1
		return
	}
	a.finished = true
}

// Restart resets the attempt to the first question with a zero score.
func (a *QuizAttempt) Restart() {
	*a = *NewQuizAttempt(a.quiz)
}

// Answered reports whether the current question has been answered.
func (a *QuizAttempt) Answered() bool { return a.answered }

// Selected returns the chosen option, or -1.
func (a *QuizAttempt) Selected() int { return a.selected }

// Finished reports whether the results should be shown.
func (a *QuizAttempt) Finished() bool { return a.finished }

// Result returns the running score.
func (a *QuizAttempt) Result() QuizResult {
	return QuizResult{
		Correct:    a.score,
		Total:      len(a.quiz.Questions),
		Percentage: percentage(a.score, len(a.quiz.Questions)),
	}
}
