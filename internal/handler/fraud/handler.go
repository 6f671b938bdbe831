package fraud

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/portfolio-desk/backend/internal/filter"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/fraud"
	"github.com/zhouzirui/portfolio-desk/backend/pkg/utils"
)

// EmptyMessage 搜索无结果时前端展示的提示
const EmptyMessage = "No fraudulent sites matching your search criteria."

// Handler 欺诈网站警示的HTTP处理器
type Handler struct {
	sites fraud.Store
}

// New 创建欺诈警示处理器
func New(sites fraud.Store) *Handler {
	return &Handler{sites: sites}
}

// RegisterRoutes 注册欺诈警示相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/fraud", func(fr chi.Router) {
		fr.Get("/sites", h.handleListSites)
		fr.Get("/sites/{siteID}", h.handleGetSite)
		fr.Get("/categories", h.handleCategories)
		fr.Get("/risk-levels", h.handleRiskLevels)
		fr.Get("/tips", h.handleTips)
	})
}

type siteView struct {
	fraud.Site
	CategoryLabel string `json:"categoryLabel"`
	RiskLabel     string `json:"riskLabel"`
}

type listResponse struct {
	Sites        []siteView `json:"sites"`
	Count        int        `json:"count"`
	Query        string     `json:"query"`
	Category     string     `json:"category"`
	EmptyMessage string     `json:"emptyMessage,omitempty"`
}

// handleListSites 按名称/网址与分类过滤
func (h *Handler) handleListSites(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = fraud.AllCategories
	}

	matches := filter.Filter(h.sites.List(), query, category)
	views := make([]siteView, 0, len(matches))
	for _, site := range matches {
		views = append(views, newSiteView(site))
	}

	resp := listResponse{
		Sites:    views,
		Count:    len(views),
		Query:    query,
		Category: category,
	}
	if len(views) == 0 {
		resp.EmptyMessage = EmptyMessage
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleGetSite 查询单个网站
func (h *Handler) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, ok := h.sites.FindByID(chi.URLParam(r, "siteID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "site not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, newSiteView(site))
}

// handleCategories 列出分类选项
func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sites.Categories())
}

func (h *Handler) handleRiskLevels(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sites.RiskLevels())
}

// handleTips 列出安全建议
func (h *Handler) handleTips(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sites.Tips())
}

func newSiteView(site fraud.Site) siteView {
	return siteView{
		Site:          site,
		CategoryLabel: site.Category.Label(),
		RiskLabel:     site.RiskLevel.Label(),
	}
}
