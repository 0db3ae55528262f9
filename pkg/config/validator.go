package config

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 配置验证器，支持标准 validate tag：
// required、min/max、gte/lte、oneof、url 等
type Validator struct {
	validate *validator.Validate
}

// NewValidator 创建验证器
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate 验证配置结构体
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if err := v.validate.Struct(cfg); err != nil {
		return errors.Mark(errors.Newf("config: %s", formatValidationErrors(err)), ErrValidationFailed)
	}
	return nil
}

// RegisterValidation 注册自定义规则
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return errors.Wrapf(err, "config: register validation %s", tag)
	}
	return nil
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("field '%s' is required", field))
		case "min", "gte":
			parts = append(parts, fmt.Sprintf("field '%s' must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("field '%s' must be at most %s", field, fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("field '%s' must be one of [%s]", field, fe.Param()))
		case "url":
			parts = append(parts, fmt.Sprintf("field '%s' must be a valid URL", field))
		default:
			parts = append(parts, fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
