package services

// Completion cascade triggers are modeled as explicit events rather than
// hidden side effects of unrelated writes, so the recompute can be fired
// and tested on its own.

// VideoCompleted fires when a video progress record first transitions to
// completed.
type VideoCompleted struct {
	UserID  uint
	VideoID uint
}

// QuizPassed fires when a quiz attempt completes with a passing score.
type QuizPassed struct {
	UserID uint
	QuizID uint
}
