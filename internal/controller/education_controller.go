package controller

import (
	"trading_edu_backend/internal/model"
	"trading_edu_backend/internal/service"
	"trading_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EducationController struct {
	ProgressService *service.ProgressService
	QuizService     *service.QuizService
}

func NewEducationController(progressService *service.ProgressService, quizService *service.QuizService) *EducationController {
	return &EducationController{
		ProgressService: progressService,
		QuizService:     quizService,
	}
}

// MutationResponse carries the result of a state change together with the
// notifications it raised.
type MutationResponse struct {
	Result        interface{}            `json:"result"`
	Notifications []service.Notification `json:"notifications"`
}

type SetLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

// @Summary 获取学习进度
// @Description 当前等级、模块、卡片位置、各等级完成数与百分比、徽章
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/education/progress [get]
func (c *EducationController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProgressService.Snapshot(ctx.Request.Context(), user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 切换当前等级
// @Tags 交易教育
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SetLevelRequest true "basics | intermediate | pro"
// @Success 200 {object} util.Response{data=service.Cursor}
// @Router /api/education/level [put]
func (c *EducationController) SetLevel(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SetLevelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	level, err := model.ParseLevel(req.Level)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cur, err := c.ProgressService.SetLevel(ctx.Request.Context(), user.UserID(), level)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cur)
}

// @Summary 获取等级下的模块状态
// @Description 每个模块的完成、锁定、当前状态
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Param level path string true "等级"
// @Success 200 {object} util.Response{data=[]service.ModuleStatus}
// @Failure 404 {object} util.Response
// @Router /api/education/levels/{level}/modules [get]
func (c *EducationController) ListModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	level, err := model.ParseLevel(ctx.Param("level"))
	if err != nil {
		util.NotFound(ctx, err.Error())
		return
	}

	statuses, err := c.ProgressService.ModuleStatuses(ctx.Request.Context(), user.UserID(), level)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, statuses)
}

// @Summary 选择模块
// @Description 设为当前模块并恢复上次的卡片位置
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=service.Cursor}
// @Failure 404 {object} util.Response
// @Router /api/education/modules/{moduleId}/select [post]
func (c *EducationController) SelectModule(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	cur, err := c.ProgressService.SelectModule(ctx.Request.Context(), user.UserID(), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cur)
}

// @Summary 标记模块已查看
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/education/modules/{moduleId}/view [post]
func (c *EducationController) MarkViewed(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ProgressService.MarkModuleViewed(ctx.Request.Context(), user.UserID(), ctx.Param("moduleId")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"moduleId": ctx.Param("moduleId"), "viewed": true})
}

// @Summary 下一张卡片
// @Description 最后一张卡片时不再前进，并标记自动打开测验
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=MutationResponse}
// @Failure 409 {object} util.Response
// @Router /api/education/cards/next [post]
func (c *EducationController) NextCard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	reqCtx, collector := service.WithCollector(ctx.Request.Context())
	cur, err := c.ProgressService.AdvanceCard(reqCtx, user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, MutationResponse{Result: cur, Notifications: collector.Notifications()})
}

// @Summary 上一张卡片
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Cursor}
// @Failure 409 {object} util.Response
// @Router /api/education/cards/prev [post]
func (c *EducationController) PrevCard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	cur, err := c.ProgressService.RetreatCard(ctx.Request.Context(), user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, cur)
}

// @Summary 清除自动打开测验标记
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/education/auto-launch [delete]
func (c *EducationController) ClearAutoLaunch(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ProgressService.ClearAutoLaunch(ctx.Request.Context(), user.UserID()); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 提交测验结果
// @Description 用于客户端自行计分的测验；首次通过会完成模块并进入下一个模块
// @Tags 交易教育
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizSubmission true "测验结果"
// @Success 200 {object} util.Response{data=MutationResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/education/quiz-results [post]
func (c *EducationController) RecordQuizResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reqCtx, collector := service.WithCollector(ctx.Request.Context())
	res, err := c.ProgressService.RecordQuizResult(reqCtx, user.UserID(), req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, MutationResponse{Result: res, Notifications: collector.Notifications()})
}

// @Summary 获取学习统计
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Stats}
// @Router /api/education/stats [get]
func (c *EducationController) GetStats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.ProgressService.Stats(ctx.Request.Context(), user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// @Summary 获取徽章
// @Description 全部徽章及解锁状态
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.BadgeView}
// @Router /api/education/badges [get]
func (c *EducationController) GetBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.ProgressService.Badges(ctx.Request.Context(), user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// @Summary 结束学习会话
// @Description 登出时调用，释放内存中的会话与未完成的测验
// @Tags 交易教育
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=MutationResponse}
// @Router /api/education/session/end [post]
func (c *EducationController) EndSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	reqCtx, collector := service.WithCollector(ctx.Request.Context())
	c.QuizService.Abandon(user.UserID())
	ended := c.ProgressService.EndSession(reqCtx, user.UserID())
	util.Success(ctx, MutationResponse{
		Result:        gin.H{"ended": ended},
		Notifications: collector.Notifications(),
	})
}
