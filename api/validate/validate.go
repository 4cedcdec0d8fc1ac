package validate

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var txHashRegexp = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// BindingValidator 注册自定义校验 tag，gin 绑定参数时生效
func BindingValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return v.RegisterValidation("tx_hash", func(fl validator.FieldLevel) bool {
		return txHashRegexp.MatchString(fl.Field().String())
	})
}

// fieldErrors returns the validation failures of err, nil for other errors.
func fieldErrors(err error) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return errs
	}
	return nil
}
