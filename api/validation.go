package api

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"hisaab/models"
	"hisaab/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MsgInvalidJSON 请求体不是合法 JSON
const MsgInvalidJSON = "Request body must be valid JSON"

// MsgInvalidQuery 查询参数无法解析
const MsgInvalidQuery = "Invalid query parameters"

// messageTable 字段校验提示，键为 "字段.规则"，类型错误使用 "字段.type"
type messageTable map[string]string

var setupValidatorOnce sync.Once

// SetupValidator 让 gin 校验错误使用 json 字段名
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// bindJSON 绑定并校验请求体，空请求体按空对象处理
func bindJSON(c *gin.Context, req interface{}, messages messageTable) error {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return nil
	}
	return translateBindError(err, messages)
}

// bindQuery 绑定查询参数，取值校验由 service 层完成
func bindQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return &service.BadRequestError{Message: MsgInvalidQuery}
	}
	return nil
}

// translateBindError 将绑定错误转为字段级错误
func translateBindError(err error, messages messageTable) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]models.FieldError, 0, len(verrs))
		seen := make(map[string]bool, len(verrs))
		for _, fe := range verrs {
			path := fe.Field()
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, models.FieldError{Path: path, Msg: messages.lookup(path, fe.Tag())})
		}
		return &service.ValidationError{Errors: out}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		path := typeErr.Field
		if path == "" {
			return &service.BadRequestError{Message: MsgInvalidJSON}
		}
		return service.NewValidationError(path, messages.lookup(path, "type"))
	}

	return &service.BadRequestError{Message: MsgInvalidJSON}
}

func (m messageTable) lookup(path, tag string) string {
	if msg, ok := m[path+"."+tag]; ok {
		return msg
	}
	return "Invalid value for " + path
}
