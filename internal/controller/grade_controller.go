package controller

import (
	"errors"
	"strconv"

	"gradebook_backend/internal/service"
	"gradebook_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	GradeService *service.GradeService
}

func NewGradeController(gradeService *service.GradeService) *GradeController {
	return &GradeController{GradeService: gradeService}
}

// respondFeedError 将服务层错误映射为响应
func respondFeedError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrPeriodNotFound):
		util.NotFound(ctx, util.ErrPeriodNotFound.Error())
	case errors.Is(err, util.ErrAccountMissing):
		util.BadRequest(ctx, util.ErrAccountMissing.Error())
	case errors.Is(err, util.ErrFeedRejected):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrFeedUnavailable):
		util.BadGateway(ctx, util.ErrFeedUnavailable.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 获取成绩周期
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Period}
// @Failure 502 {object} util.Response
// @Router /grades/periods [get]
func (c *GradeController) GetPeriods(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	periods, err := c.GradeService.GetGradesPeriods(ctx.Request.Context(), user.Account())
	if err != nil {
		respondFeedError(ctx, err)
		return
	}
	util.Success(ctx, periods)
}

// @Summary 获取某个周期的成绩与平均分
// @Tags 成绩
// @Produce json
// @Security ApiKeyAuth
// @Param period query string true "周期名称"
// @Param refresh query bool false "忽略缓存重新拉取"
// @Success 200 {object} util.Response{data=service.GradesAndAverages}
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /grades [get]
func (c *GradeController) GetGradesAndAverages(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	periodName := ctx.Query("period")
	if periodName == "" {
		util.BadRequest(ctx, "period is required")
		return
	}

	account := user.Account()
	if refresh, _ := strconv.ParseBool(ctx.Query("refresh")); refresh {
		if err := c.GradeService.Refresh(ctx.Request.Context(), account); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}

	result, err := c.GradeService.GetGradesAndAverages(ctx.Request.Context(), account, periodName)
	if err != nil {
		respondFeedError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
