package controller

import (
	"coder_edu_progress/internal/util"
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将业务错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	var ve *util.ValidationError
	switch {
	case errors.Is(err, util.ErrInvalidCourse):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAlreadyCompleted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		util.NotFound(ctx)
	case errors.As(err, &ve):
		util.BadRequest(ctx, ve.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
