package memory

import "errors"

var (
	errDuplicateJob = errors.New("memory: job id already used")
	errNonPositive  = errors.New("memory: amount must be greater than zero")
)
