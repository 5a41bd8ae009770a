package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// ErrNoCredential 当前没有选中可用的 API Key
var ErrNoCredential = errors.New("gemini: no API key selected")

// authFailureMarker 远端在 Key 无效或未选择时返回的消息片段
const authFailureMarker = "Requested entity was not found"

// IsAuthorizationError 判断错误是否表示凭证无效或未选择。
// 优先看结构化的 genai.APIError，拿不到时才退回到消息子串匹配。
func IsAuthorizationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoCredential) {
		return true
	}
	if apiErr, ok := asAPIError(err); ok {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Status == "UNAUTHENTICATED":
			return true
		case apiErr.Code == http.StatusNotFound && strings.Contains(apiErr.Message, authFailureMarker):
			return true
		case hasReason(apiErr.Details, "API_KEY_INVALID"):
			return true
		}
	}
	return strings.Contains(err.Error(), authFailureMarker)
}

// asAPIError 兼容值类型和指针类型的 APIError
func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

// hasReason 在 google.rpc.ErrorInfo 详情中查找 reason
func hasReason(details []map[string]any, reason string) bool {
	for _, d := range details {
		if r, ok := d["reason"].(string); ok && r == reason {
			return true
		}
	}
	return false
}
