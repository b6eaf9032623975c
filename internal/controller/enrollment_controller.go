package controller

import (
	"coder_edu_progress/internal/service"
	"coder_edu_progress/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	Service *service.EnrollmentService
}

func NewEnrollmentController(svc *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{Service: svc}
}

// @Summary 报名课程
// @Description 重复报名返回已有记录
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	e, created, err := c.Service.Enroll(ctx.Request.Context(), user.UserID, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	if created {
		util.Created(ctx, e)
		return
	}
	util.Success(ctx, e)
}

// @Summary 获取报名记录
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/enrollment [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	e, err := c.Service.GetEnrollment(ctx.Request.Context(), user.UserID, ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, e)
}

// @Summary 我的报名列表
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	es, err := c.Service.ListEnrollments(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, es)
}

// @Summary 完成内容
// @Description 只有当前解锁的内容可以标记完成
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param contentId path string true "内容 ID"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/courses/{slug}/contents/{contentId}/complete [post]
func (c *EnrollmentController) CompleteContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	res, err := c.Service.CompleteContent(ctx.Request.Context(), user.UserID, ctx.Param("slug"), ctx.Param("contentId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
