// Package validator 注册自定义绑定校验规则，并把校验错误转换为中文提示
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern     = regexp.MustCompile(`^1[3-9]\d{9}$`)
	studentIDPattern = regexp.MustCompile(`^\d{8,12}$`)
	usernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]{4,16}$`)
)

// Register 在 gin 默认校验引擎上注册自定义规则
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	return RegisterOn(v)
}

// RegisterOn 在指定校验器上注册自定义规则
func RegisterOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	rules := map[string]validator.Func{
		"notblank":  notBlank,
		"cnphone":   matchString(phonePattern),
		"studentid": matchString(studentIDPattern),
		"username":  matchString(usernamePattern),
		"strongpwd": strongPassword,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// strongPassword 至少 8 位，仅字母数字，且同时包含大写、小写字母和数字
func strongPassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

// IsStrongPassword 密码强度规则
func IsStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			return false
		}
	}
	return lower && upper && digit
}

// Message 将绑定错误转换为面向用户的提示
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "请求参数格式错误"
	}
	return fieldMessage(verrs[0])
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return field + " 不能为空"
	case "cnphone":
		return "请输入正确的手机号"
	case "studentid":
		return "请输入正确的学号"
	case "username":
		return "用户名必须是4-16位字母、数字或下划线"
	case "strongpwd":
		return "密码必须包含大小写字母和数字，且长度不少于8位"
	case "email":
		return "请输入正确的邮箱地址"
	case "min":
		return field + " 不能小于 " + fe.Param()
	case "max":
		return field + " 不能大于 " + fe.Param()
	case "oneof":
		return field + " 必须是 " + fe.Param() + " 之一"
	default:
		return field + " 格式不正确"
	}
}
