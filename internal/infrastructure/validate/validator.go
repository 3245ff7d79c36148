// Package validate 封装请求参数校验
// 校验失败统一转换为 errorx.CodeInvalidParam，在任何网络调用之前拒绝
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	"poly_chat_client/pkg/errorx"
)

var (
	v     *validator.Validate
	trans ut.Translator
	once  sync.Once
)

// InitTrans 初始化校验器和翻译器
// locale 参数指定语言，例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {
	engine := validator.New()

	// 错误信息使用 json tag 作为字段名，而不是 Go 结构体字段名
	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhT := zh.New()
	enT := en.New()
	// 第一个参数是 fallback 语言
	uni := ut.New(enT, zhT, enT)

	t, ok := uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(engine, t)
	default:
		err = en_translations.RegisterDefaultTranslations(engine, t)
	}
	if err != nil {
		return err
	}

	v = engine
	trans = t
	return nil
}

func ensure() {
	once.Do(func() {
		if v == nil {
			_ = InitTrans("en")
		}
	})
}

// Struct 校验结构体，失败时返回 CodeInvalidParam 错误，消息为翻译后的字段提示
func Struct(obj any) error {
	ensure()
	err := v.Struct(obj)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := RemoveTopStruct(validationErrs.Translate(trans))
		return errorx.Wrap(err, errorx.CodeInvalidParam, joinFields(fields))
	}
	return errorx.Wrap(err, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg)
}

// RemoveTopStruct 去除提示信息中的结构体名称前缀，如 "SearchUsersRequest.query" -> "query"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// joinFields 按字段名排序后拼接，保证消息稳定
func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}
