package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓包裝過的錯誤也能以 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Wrap 以預定義錯誤包裝原始錯誤
func Wrap(base *CustomError, err error) *CustomError {
	return NewError(base.Code, base.Message, base.Status, err)
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"     // 400
	ErrCodeNotFound           = "NOT_FOUND"           // 404
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"   // 429
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	ErrCodeInputInvalid      = "INPUT_INVALID"
	ErrCodeQuotaExceeded     = "QUOTA_EXCEEDED"
	ErrCodeMalformedUpstream = "MALFORMED_UPSTREAM"
	ErrCodePersistence       = "PERSISTENCE_FAILURE"
	ErrCodeUpstreamFailure   = "UPSTREAM_FAILURE"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	// 食材不足以產生食譜，一律以提示回應處理
	ErrInputInvalid = NewError(ErrCodeInputInvalid, "食材不足以產生食譜", http.StatusUnprocessableEntity, nil)
	// 外部食譜 API 額度或帳務問題（HTTP 402），靜默降級
	ErrQuotaExceeded = NewError(ErrCodeQuotaExceeded, "外部食譜服務額度已用盡", http.StatusPaymentRequired, nil)
	// 外部食譜 API 一般失敗
	ErrUpstreamFailure = NewError(ErrCodeUpstreamFailure, "外部食譜服務錯誤", http.StatusBadGateway, nil)
	// 外部資料缺少必要欄位，該筆資料直接丟棄
	ErrMalformedUpstream = NewError(ErrCodeMalformedUpstream, "外部食譜資料格式錯誤", http.StatusBadGateway, nil)
	// 快取或偏好儲存失敗，記錄後吞掉
	ErrPersistence = NewError(ErrCodePersistence, "資料儲存失敗", http.StatusInternalServerError, nil)
)

// IsSourceUnavailable 判斷是否為來源不可用（含額度用盡）
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrQuotaExceeded)
}

// IsQuotaExceeded 判斷是否為額度用盡
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// StatusOf 取得錯誤對應的 HTTP 狀態碼
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Status
	}
	if IsValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
