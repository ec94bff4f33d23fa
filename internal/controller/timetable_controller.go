package controller

import (
	"errors"
	"strconv"

	"gradebook_backend/internal/model"
	"gradebook_backend/internal/service"
	"gradebook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TimetableController struct {
	TimetableService *service.TimetableService
}

func NewTimetableController(timetableService *service.TimetableService) *TimetableController {
	return &TimetableController{TimetableService: timetableService}
}

func parseWeek(ctx *gin.Context) (int, bool) {
	week, err := strconv.Atoi(ctx.Param("week"))
	if err != nil || week < 0 {
		util.BadRequest(ctx, util.ErrInvalidWeek.Error())
		return 0, false
	}
	return week, true
}

func respondTimetableError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrInvalidWeek) || errors.Is(err, util.ErrInvalidUser) {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.LogInternalError(ctx, err)
}

// @Summary 获取全部课表
// @Tags 课表
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /timetable [get]
func (c *TimetableController) GetTimetables(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	timetables, err := c.TimetableService.GetTimetables(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondTimetableError(ctx, err)
		return
	}
	util.Success(ctx, model.TimetableState{Timetables: timetables})
}

// @Summary 获取某一周的课程
// @Tags 课表
// @Produce json
// @Security ApiKeyAuth
// @Param week path int true "周次"
// @Success 200 {object} util.Response{data=[]model.Session}
// @Router /timetable/weeks/{week} [get]
func (c *TimetableController) GetClasses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	week, ok := parseWeek(ctx)
	if !ok {
		return
	}
	sessions, err := c.TimetableService.GetClasses(ctx.Request.Context(), user.UserID, week)
	if err != nil {
		respondTimetableError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// @Summary 更新某一周的课程（替换并去重）
// @Tags 课表
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param week path int true "周次"
// @Param body body []model.Session true "课程列表"
// @Success 200 {object} util.Response{data=[]model.Session}
// @Router /timetable/weeks/{week} [put]
func (c *TimetableController) UpdateClasses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	week, ok := parseWeek(ctx)
	if !ok {
		return
	}

	var sessions []model.Session
	if err := ctx.ShouldBindJSON(&sessions); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.TimetableService.UpdateClasses(ctx.Request.Context(), user.UserID, week, sessions)
	if err != nil {
		respondTimetableError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// @Summary 删除某一周的课程
// @Tags 课表
// @Produce json
// @Security ApiKeyAuth
// @Param week path int true "周次"
// @Success 200 {object} util.Response
// @Router /timetable/weeks/{week} [delete]
func (c *TimetableController) RemoveClasses(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	week, ok := parseWeek(ctx)
	if !ok {
		return
	}
	if err := c.TimetableService.RemoveClasses(ctx.Request.Context(), user.UserID, week); err != nil {
		respondTimetableError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"removed": week})
}

// @Summary 删除指定来源的全部课程
// @Tags 课表
// @Produce json
// @Security ApiKeyAuth
// @Param source path string true "来源"
// @Success 200 {object} util.Response
// @Router /timetable/sources/{source} [delete]
func (c *TimetableController) RemoveClassesFromSource(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	source := ctx.Param("source")
	if err := c.TimetableService.RemoveClassesFromSource(ctx.Request.Context(), user.UserID, source); err != nil {
		respondTimetableError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"source": source})
}
