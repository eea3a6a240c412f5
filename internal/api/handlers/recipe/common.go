package recipe

import (
	"errors"
	"net/http"

	"recipe-engine/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉為統一的錯誤響應
func RespondError(c *gin.Context, err error) {
	status := common.StatusOf(err)
	resp := common.ErrorResponse{Code: common.ErrCodeInternalError, Message: "Internal server error"}

	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
		resp.Code = ce.Code
		resp.Message = ce.Message
		if ce.Err != nil && gin.IsDebugging() {
			resp.Details = ce.Err.Error()
		}
	case common.IsValidationError(err):
		resp.Code = common.ErrCodeInvalidRequest
		resp.Message = err.Error()
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無效", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON 解析請求內容，失敗時直接回應 400
func BindJSON(c *gin.Context, v interface{}) bool {
	if c.Request.Body == nil {
		RespondError(c, common.NewValidationError("invalid request: empty body"))
		return false
	}
	if err := common.DecodeJSON(c.Request.Body, v); err != nil {
		RespondError(c, common.NewValidationError("invalid request: "+err.Error()))
		return false
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		RespondError(c, common.NewValidationError("invalid request: "+err.Error()))
		return false
	}
	return true
}
