package handler

import (
	"errors"
	"net/http"

	"prison-records/internal/logging"
	"prison-records/internal/models"
	"prison-records/internal/store"
	"prison-records/internal/util"
	"prison-records/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PrisonerHandler 负责记录列表、视图状态和增改接口
type PrisonerHandler struct {
	Store  store.Store
	View   *ViewSession
	Logger *zap.Logger
}

func NewPrisonerHandler(s store.Store, v *ViewSession, logger *zap.Logger) *PrisonerHandler {
	return &PrisonerHandler{
		Store:  s,
		View:   v,
		Logger: logging.OrNop(logger),
	}
}

// ---------- 请求结构 ----------

type pageReq struct {
	Page string `json:"page" binding:"required"`
}

type sortReq struct {
	Key string `json:"key" binding:"required"`
}

type gotoReq struct {
	Index *int `json:"index" binding:"required"`
}

// respond 返回当前视图
func (h *PrisonerHandler) respond(c *gin.Context, extra util.Response) {
	res, st, err := h.View.Render(c.Request.Context(), h.Store)
	if err != nil {
		h.Logger.Error("render view", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load records")
		return
	}
	data := util.Response{
		"view":  res,
		"state": st,
	}
	for k, v := range extra {
		data[k] = v
	}
	util.Success(c, data)
}

// ---------- 列表与视图 ----------

// List 返回当前页
func (h *PrisonerHandler) List(c *gin.Context) {
	h.respond(c, nil)
}

func (h *PrisonerHandler) SetPage(c *gin.Context) {
	var req pageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	p := models.ParsePage(req.Page)
	h.View.Update(func(s *view.State) { s.SetPage(p) })
	h.respond(c, nil)
}

func (h *PrisonerHandler) SetFilters(c *gin.Context) {
	var f models.Filters
	if err := c.ShouldBindJSON(&f); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	h.View.Update(func(s *view.State) { s.SetFilters(f) })
	h.respond(c, nil)
}

func (h *PrisonerHandler) ToggleSort(c *gin.Context) {
	var req sortReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	if !view.Sortable(req.Key) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Unknown sort field: "+req.Key)
		return
	}
	h.View.Update(func(s *view.State) { s.ToggleSort(req.Key) })
	h.respond(c, nil)
}

func (h *PrisonerHandler) GoTo(c *gin.Context) {
	var req gotoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	h.View.Update(func(s *view.State) { s.GoTo(*req.Index) })
	h.respond(c, nil)
}

// ---------- 单条记录 ----------

func (h *PrisonerHandler) Get(c *gin.Context) {
	p, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	util.Success(c, util.Response{"record": p})
}

// Create 新增一条记录，sNo 与 id 由 store 分配
func (h *PrisonerHandler) Create(c *gin.Context) {
	var in models.PrisonerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	in, err := prepareInput(in, models.NewInput().Category)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}

	p, _, err := h.Store.Add(c.Request.Context(), in)
	if err != nil {
		h.storeError(c, err)
		return
	}
	h.Logger.Info("record added", zap.String("id", p.ID), zap.Int("sNo", p.SNo))
	h.respond(c, util.Response{"record": p})
}

// Update 修改记录，id 与 sNo 保持不变
func (h *PrisonerHandler) Update(c *gin.Context) {
	var in models.PrisonerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}
	old, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	in, err = prepareInput(in, old.Category)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, util.ValidationMessage(err))
		return
	}

	p, _, err := h.Store.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.storeError(c, err)
		return
	}
	h.Logger.Info("record updated", zap.String("id", p.ID), zap.Int("sNo", p.SNo))
	h.respond(c, util.Response{"record": p})
}

// prepareInput 填默认值；类别变化时才套用国籍规则，最后做完整校验
func prepareInput(in models.PrisonerInput, from models.Category) (models.PrisonerInput, error) {
	in = in.Normalize()
	if in.Category != from {
		in = models.ApplyCategory(in, in.Category)
	}
	return in, util.ValidateRecord(in)
}

func (h *PrisonerHandler) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Record not found")
		return
	}
	h.Logger.Error("store operation failed", zap.Error(err))
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to save record, please try again")
}
