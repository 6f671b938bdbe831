package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/portfolio-desk/backend/internal/handler/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/handler/fraud"
	"github.com/zhouzirui/portfolio-desk/backend/internal/handler/portfolio"
	"github.com/zhouzirui/portfolio-desk/backend/internal/handler/stream"
	"github.com/zhouzirui/portfolio-desk/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/portfolio-desk/backend/internal/middleware"
	chartModel "github.com/zhouzirui/portfolio-desk/backend/internal/model/chart"
	fraudModel "github.com/zhouzirui/portfolio-desk/backend/internal/model/fraud"
	portfolioModel "github.com/zhouzirui/portfolio-desk/backend/internal/model/portfolio"
	chatService "github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
	"github.com/zhouzirui/portfolio-desk/backend/pkg/utils"
)

// Dependencies groups what the HTTP layer needs.
type Dependencies struct {
	Positions      portfolioModel.Store
	Chart          chartModel.Series
	Sites          fraudModel.Store
	Chat           *chatService.Service
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		portfolio.New(deps.Positions, deps.Chart).RegisterRoutes(api)
		fraud.New(deps.Sites).RegisterRoutes(api)

		chat.New(deps.Chat).RegisterRoutes(api)
		stream.New(deps.Chat).RegisterRoutes(api)
		ws.New(deps.Chat).RegisterRoutes(api)
	})

	return r
}
