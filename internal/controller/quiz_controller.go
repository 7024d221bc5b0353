package controller

import (
	"trading_edu_backend/internal/service"
	"trading_edu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type AnswerRequest struct {
	Option *int `json:"option" binding:"required"`
}

// @Summary 开始测验
// @Description 优先使用远程题库，没有时使用模块自带题目；会替换正在进行的测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param moduleId path string true "模块ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response
// @Router /api/education/quiz/{moduleId}/start [post]
func (c *QuizController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.StartQuiz(ctx.Request.Context(), user.UserID(), ctx.Param("moduleId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 获取当前测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 404 {object} util.Response
// @Router /api/education/quiz [get]
func (c *QuizController) Current(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.Current(user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 作答
// @Description 每题只记录第一次作答
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AnswerRequest true "选项下标"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/education/quiz/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.QuizService.Answer(user.UserID(), *req.Option)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 下一题
// @Description 最后一题时结束测验并记录成绩
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=MutationResponse}
// @Failure 409 {object} util.Response
// @Router /api/education/quiz/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	reqCtx, collector := service.WithCollector(ctx.Request.Context())
	step, err := c.QuizService.Next(reqCtx, user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, MutationResponse{Result: step, Notifications: collector.Notifications()})
}

// @Summary 重新测验
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 409 {object} util.Response
// @Router /api/education/quiz/restart [post]
func (c *QuizController) Restart(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.QuizService.Restart(user.UserID())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 放弃测验
// @Description 关闭测验，不记录成绩
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/education/quiz [delete]
func (c *QuizController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{"abandoned": c.QuizService.Abandon(user.UserID())})
}
