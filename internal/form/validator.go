// Package form 在调用网络之前校验表单输入。校验失败时只显示第一条信息，不会发出请求
package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

// DateTimeLocal 是 datetime-local 输入框的格式，不带时区
const DateTimeLocal = "2006-01-02T15:04"

var (
	phoneRegexp      = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
	inviteCodeRegexp = regexp.MustCompile(`^[A-Za-z0-9-]{6,36}$`)
	usernameRegexp   = regexp.MustCompile(`^[A-Za-z0-9._-]{3,32}$`)
)

// 自定义规则的英文提示
var customMessages = map[string]string{
	"datetimelocal": "{0} must be a valid date and time",
	"phone":         "{0} must be a valid phone number",
	"invitecode":    "{0} is not a valid invite code",
	"username":      "{0} may only contain letters, digits, '.', '_' and '-' (3 to 32 characters)",
	"afterclockin":  "{0} must be after clock-in",
}

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	// 错误信息里使用 label 标签作为字段名
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	rules := map[string]validator.Func{
		"datetimelocal": isDateTimeLocal,
		"phone":         matches(phoneRegexp),
		"invitecode":    matches(inviteCodeRegexp),
		"username":      matches(usernameRegexp),
	}
	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}
	validate.RegisterStructValidation(clockOutAfterClockIn, ShiftForm{})

	for tag, text := range customMessages {
		if err := validate.RegisterTranslation(tag, trans, addTranslation(tag, text), translate); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: validate, translator: trans}, nil
}

// Must 用于测试和 main 中，翻译注册失败说明程序本身有问题
func Must(v *Validator, err error) *Validator {
	if err != nil {
		panic(err)
	}
	return v
}

// Validate 返回 *ValidationError 或 nil
func (v *Validator) Validate(f any) error {
	err := v.validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var overrides map[string]string
	if m, ok := f.(messager); ok {
		overrides = m.Messages()
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := overrides[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fe.Translate(v.translator)
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.StructField(),
			Tag:     fe.Tag(),
			Message: msg,
		})
	}
	return out
}

// messager 由需要替换默认提示的表单实现，Key 的格式为 "字段名.规则"
type messager interface {
	Messages() map[string]string
}

type FieldError struct {
	Field   string
	Tag     string
	Message string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// UserMessage 只返回第一条，对应一次 toast
func (e *ValidationError) UserMessage() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0].Message
}

// Field 返回指定字段的第一条错误信息
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func isDateTimeLocal(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateTimeLocal, fl.Field().String())
	return err == nil
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func addTranslation(tag, text string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}
}

func translate(trans ut.Translator, fe validator.FieldError) string {
	msg, err := trans.T(fe.Tag(), fe.Field())
	if err != nil {
		return fe.Error()
	}
	return msg
}
