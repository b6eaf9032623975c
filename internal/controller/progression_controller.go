package controller

import (
	"coder_edu_progress/internal/service"
	"coder_edu_progress/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	Service *service.ProgressionService
}

func NewProgressionController(svc *service.ProgressionService) *ProgressionController {
	return &ProgressionController{Service: svc}
}

// @Summary 获取课程进度
// @Description 未报名时所有内容按空完成集合计算
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/progress [get]
func (c *ProgressionController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	p, err := c.Service.GetCourseProgress(ctx.Request.Context(), user.UserID, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// @Summary 获取课程导航
// @Description 返回导航列表以及 location 对应的上一项、下一项和能否前进
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param location query string false "当前页面路径"
// @Success 200 {object} util.Response{data=service.Navigation}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/navigation [get]
func (c *ProgressionController) GetNavigation(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	nav, err := c.Service.GetNavigation(ctx.Request.Context(), user.UserID, ctx.Param("slug"), ctx.Query("location"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nav)
}
