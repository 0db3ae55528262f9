package controller

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrValidation 编辑在发出命令前被拒绝
var ErrValidation = errors.New("controller: invalid edit")

// ValidationError 校验失败，不会到达后端
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Op + ": " + e.Reason
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
