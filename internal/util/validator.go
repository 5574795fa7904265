package util

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"prison-records/internal/models"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators 注册记录枚举校验 tag，并让错误信息使用 json 字段名
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	rules := map[string]validator.Func{
		"finetype": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseFineType(fl.Field().String())
			return ok
		},
		"status": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseStatus(fl.Field().String())
			return ok
		},
		"category": func(fl validator.FieldLevel) bool {
			_, ok := models.ParseCategory(fl.Field().String())
			return ok
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// NewValidator 返回读取 binding tag 的校验器。除 gin 绑定的字段规则外，
// 还检查外籍犯人必须填写国籍，这一步要在类别规则之后执行
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(foreignerNationality, models.PrisonerInput{})
	return v
}

func foreignerNationality(sl validator.StructLevel) {
	in := sl.Current().Interface().(models.PrisonerInput)
	if in.Category == models.CategoryForeigner && strings.TrimSpace(in.Nationality) == "" {
		sl.ReportError(in.Nationality, "nationality", "Nationality", "foreigner", "")
	}
}

var recordValidator = NewValidator()

// ValidateRecord 校验表单输入
func ValidateRecord(in models.PrisonerInput) error {
	return recordValidator.Struct(in)
}

// ValidationMessage 把校验错误转成可读信息，其他错误原样返回
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be a YYYY-MM-DD date")
		case "gte":
			msgs = append(msgs, fe.Field()+" must not be negative")
		case "foreigner":
			msgs = append(msgs, fe.Field()+" is required for Foreigner")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s has an invalid value %q", fe.Field(), fmt.Sprint(fe.Value())))
		}
	}
	return strings.Join(msgs, "; ")
}

// ValidateDate 验证日期格式（必须为 YYYY-MM-DD）
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}
