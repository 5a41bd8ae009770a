package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedResponse 结构化响应为空、不是合法 JSON，或缺少必填字段
var ErrMalformedResponse = errors.New("gemini: malformed structured response")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// StripFences 去掉模型有时包在 JSON 外面的 ```json / ``` 标记
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseStructured 解析结构化响应到 out，并按 validate 标签校验必填字段。
// out 为切片指针时要求至少一个元素（null 与 [] 均视为畸形），并逐个元素校验。
func ParseStructured(raw string, out any) error {
	body := StripFences(raw)
	if body == "" {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	v := structValidator()
	var err error
	if rv := reflect.Indirect(reflect.ValueOf(out)); rv.Kind() == reflect.Slice {
		err = v.Var(rv.Interface(), "min=1,dive")
	} else {
		err = v.Struct(out)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
