package controller

import (
	"coder_edu_progress/internal/cms"
	"coder_edu_progress/internal/service"
	"coder_edu_progress/internal/util"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxImportBytes 单个课程文档的大小上限
const maxImportBytes = 4 << 20

type CourseController struct {
	Service *service.CourseService
}

func NewCourseController(svc *service.CourseService) *CourseController {
	return &CourseController{Service: svc}
}

// @Summary 导入课程
// @Description 接收 CMS 课程文档（JSON 或 YAML），整体替换课程结构并递增版本号
// @Tags 课程
// @Accept json
// @Accept x-yaml
// @Produce json
// @Security BearerAuth
// @Param body body object true "CMS 课程文档"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 413 {object} util.Response
// @Router /api/teacher/courses/import [post]
func (c *CourseController) Import(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxImportBytes)
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, fmt.Sprintf("document exceeds %d bytes", tooLarge.Limit))
			return
		}
		util.BadRequest(ctx, err.Error())
		return
	}

	var doc cms.Document
	if strings.Contains(ctx.ContentType(), "yaml") {
		doc, err = cms.DecodeYAML(body)
	} else {
		doc, err = cms.DecodeJSON(body)
	}
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.Service.Import(ctx.Request.Context(), doc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// @Summary 获取课程结构
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.Service.GetCourse(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 下载课程导入归档
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param revision path int true "版本号"
// @Success 200 {object} object
// @Failure 404 {object} util.Response
// @Router /api/teacher/courses/{slug}/revisions/{revision} [get]
func (c *CourseController) GetArchive(ctx *gin.Context) {
	revision, err := strconv.Atoi(ctx.Param("revision"))
	if err != nil || revision <= 0 {
		util.BadRequest(ctx, "invalid revision")
		return
	}

	rc, err := c.Service.OpenArchive(ctx.Request.Context(), ctx.Param("slug"), revision)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-rev-%d.json", ctx.Param("slug"), revision)))
	ctx.DataFromReader(http.StatusOK, -1, util.MimeJSON, rc, nil)
}
