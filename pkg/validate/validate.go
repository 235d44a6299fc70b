package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	matricTag   = "matric"
	matricText  = "{0} may only contain letters, digits, '/' and '-'"
	matricRegex = regexp.MustCompile(`^[A-Za-z0-9/\-]+$`)

	requiredTag  = "required"
	requiredText = "{0} is required"

	translator ut.Translator
)

// Init 在 gin 的 validator 引擎上注册英文翻译与自定义规则
// 需在路由初始化前调用一次
func Init() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return Register(v)
}

// Register 向指定 validator 注册翻译与自定义规则
func Register(v *validator.Validate) error {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v, translator); err != nil {
		return err
	}

	// 错误信息使用 json / form 标签名而不是结构体字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	if err := v.RegisterValidation(matricTag, func(fl validator.FieldLevel) bool {
		return matricRegex.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	registerTranslation(v, matricTag, matricText, false)
	registerTranslation(v, requiredTag, requiredText, true)
	return nil
}

func registerTranslation(v *validator.Validate, tag, text string, override bool) {
	_ = v.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Messages 将绑定/校验错误转换为面向用户的英文提示
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"invalid request payload"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			msgs = append(msgs, fe.Translate(translator))
		} else {
			msgs = append(msgs, fe.Error())
		}
	}
	return msgs
}

// Message 合并后的单行提示
func Message(err error) string {
	return strings.Join(Messages(err), "; ")
}
