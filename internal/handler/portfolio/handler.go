package portfolio

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/portfolio-desk/backend/internal/filter"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chart"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
	"github.com/zhouzirui/portfolio-desk/backend/pkg/utils"
)

// EmptyMessage 搜索无结果时前端展示的提示
const EmptyMessage = "No stocks matching your search criteria."

// Handler 持仓与收益曲线的HTTP处理器
type Handler struct {
	positions portfolio.Store
	series    chart.Series
}

// New 创建持仓处理器
func New(positions portfolio.Store, series chart.Series) *Handler {
	return &Handler{
		positions: positions,
		series:    series,
	}
}

// RegisterRoutes 注册持仓相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/portfolio", h.handleListPositions)
	r.Get("/portfolio/chart", h.handleChart)
	r.Get("/portfolio/{symbol}", h.handleGetPosition)
}

type listResponse struct {
	Positions    []portfolio.Position `json:"positions"`
	Count        int                  `json:"count"`
	TotalValue   float64              `json:"totalValue"`
	Query        string               `json:"query"`
	EmptyMessage string               `json:"emptyMessage,omitempty"`
}

// handleListPositions 按代码或名称过滤持仓
func (h *Handler) handleListPositions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	matches := filter.Filter(h.positions.List(), query, filter.All)

	resp := listResponse{
		Positions:  matches,
		Count:      len(matches),
		TotalValue: h.positions.TotalValue(),
		Query:      query,
	}
	if len(matches) == 0 {
		resp.EmptyMessage = EmptyMessage
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetPosition 查询单个持仓
func (h *Handler) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	position, ok := h.positions.FindBySymbol(symbol)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "position not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, position)
}

type chartResponse struct {
	Points        []chart.Point     `json:"points"`
	Ranges        []chart.TimeRange `json:"ranges"`
	SelectedRange string            `json:"selectedRange"`
	Trend         chart.Trend       `json:"trend"`
	Headline      chart.Headline    `json:"headline"`
}

// handleChart 返回收益曲线，range 只影响选中状态，数据为静态样本
func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	selected := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("range")))
	if selected == "" {
		selected = chart.DefaultRange
	}
	if !h.series.ValidRange(selected) {
		utils.RespondError(w, http.StatusBadRequest, "unknown range")
		return
	}

	utils.RespondJSON(w, http.StatusOK, chartResponse{
		Points:        h.series.Points,
		Ranges:        h.series.Ranges,
		SelectedRange: selected,
		Trend:         h.series.Trend(),
		Headline:      h.series.Headline,
	})
}
