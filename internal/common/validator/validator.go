// Package validator 注册请求校验规则并翻译校验错误
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Register 在 gin 的 binding 引擎上注册自定义规则，可重复调用
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterRules(v)
	})
	return registerErr
}

// New 创建带自定义规则的独立校验器
func New() *validator.Validate {
	v := validator.New()
	_ = RegisterRules(v)
	return v
}

// RegisterRules 注册字段名与自定义规则
func RegisterRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]validator.Func{
		"booking_status": func(fl validator.FieldLevel) bool {
			return models.IsValidBookingStatus(fl.Field().String())
		},
		"ticket_status": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.TicketStatusOpen || s == models.TicketStatusResolved
		},
		"address_entity": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.AddressEntityUser || s == models.AddressEntityHotel
		},
		"amenity_entity": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == models.AmenityEntityRoom || s == models.AmenityEntityHotel
		},
		"role": func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return utils.ValidatePhone(fl.Field().String())
		},
		"date": func(fl validator.FieldLevel) bool {
			_, err := models.ParseDate(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

// Translate 将校验错误翻译为可读消息，非校验错误返回空串
func Translate(err error) string {
	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return ""
	}

	msgs := make([]string, 0, len(validateErrs))
	for _, fe := range validateErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 为必填项", field)
	case "email":
		return fmt.Sprintf("%s 不是有效的邮箱", field)
	case "min", "gte", "gt":
		return fmt.Sprintf("%s 不能小于 %s", field, fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s 不能大于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须是 [%s] 之一", field, fe.Param())
	case "date":
		return fmt.Sprintf("%s 必须为 YYYY-MM-DD 格式", field)
	case "phone":
		return fmt.Sprintf("%s 不是有效的电话号码", field)
	case "booking_status", "ticket_status", "address_entity", "amenity_entity", "role":
		return fmt.Sprintf("%s 取值无效", field)
	default:
		return fmt.Sprintf("%s 校验失败(%s)", field, fe.Tag())
	}
}
