package handler

import (
	"net/http"

	"prison-records/internal/logging"
	"prison-records/internal/report"
	"prison-records/internal/store"
	"prison-records/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler 负责 AI 报表与对话
type ReportHandler struct {
	Store    store.Store
	Composer *report.Composer
	Chat     *report.Chat
	View     *ViewSession
	Logger   *zap.Logger
}

func NewReportHandler(s store.Store, comp *report.Composer, chat *report.Chat, v *ViewSession, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		Store:    s,
		Composer: comp,
		Chat:     chat,
		View:     v,
		Logger:   logging.OrNop(logger),
	}
}

type rangeReq struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Sections  []string `json:"sections"`
}

type chatReq struct {
	Message string `json:"message"`
}

type retryReq struct {
	Index *int `json:"index" binding:"required"`
}

// Summary 基于当前视图（全部页）和筛选条件生成报表
func (h *ReportHandler) Summary(c *gin.Context) {
	res, st, err := h.View.Render(c.Request.Context(), h.Store)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	text := h.Composer.Summary(c.Request.Context(), res.Matched, st.Filters)
	util.Success(c, util.Response{
		"report":  text,
		"records": len(res.Matched),
	})
}

// DateRange 按时间段生成详细报表，使用全部记录
func (h *ReportHandler) DateRange(c *gin.Context) {
	var req rangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	if err := report.ValidateRange(req.StartDate, req.EndDate, req.Sections); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	for _, d := range []string{req.StartDate, req.EndDate} {
		if err := util.ValidateDate(d); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	all, err := h.Store.All(c.Request.Context())
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	text, err := h.Composer.DateRange(c.Request.Context(), all, req.StartDate, req.EndDate, req.Sections)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	util.Success(c, util.Response{"report": text})
}

// Messages 返回对话记录
func (h *ReportHandler) Messages(c *gin.Context) {
	util.Success(c, util.Response{"messages": h.Chat.Messages()})
}

func (h *ReportHandler) Send(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	util.Success(c, util.Response{"messages": h.Chat.Send(c.Request.Context(), req.Message)})
}

// Retry 重发出错的那条消息
func (h *ReportHandler) Retry(c *gin.Context) {
	var req retryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	msgs, err := h.Chat.Retry(c.Request.Context(), *req.Index)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	util.Success(c, util.Response{"messages": msgs})
}
