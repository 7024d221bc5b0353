package util

import "errors"

var (
	ErrMissingUser         = errors.New("missing user identifier")
	ErrInvalidInput        = errors.New("invalid input")
	ErrLevelNotFound       = errors.New("level not found")
	ErrModuleNotFound      = errors.New("module not found")
	ErrNoModuleSelected    = errors.New("no module selected")
	ErrNoQuestions         = errors.New("no quiz questions available for module")
	ErrNoActiveQuiz        = errors.New("no active quiz")
	ErrQuizNotInProgress   = errors.New("quiz is not in progress")
	ErrQuizNotComplete     = errors.New("quiz is not complete")
	ErrQuestionNotAnswered = errors.New("current question has not been answered")
	ErrInvalidOption       = errors.New("option index out of range")
)
