package router

import (
	"fmt"

	"prison-records/internal/config"
	"prison-records/internal/handler"
	"prison-records/internal/importer"
	"prison-records/internal/middleware"
	"prison-records/internal/report"
	"prison-records/internal/store"
	"prison-records/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Store    store.Store
	Importer *importer.Importer
	Composer *report.Composer
	Logger   *zap.Logger
}

// SetupRouter configures the Gin engine and the JSON API.
func SetupRouter(cfg *config.Config, d Deps) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := util.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("register validators: %w", err)
		}
	}

	r := gin.New()
	r.Use(middleware.RequestLogger(d.Logger), gin.Recovery())

	views := handler.NewViewSession(cfg.App.PageSize)
	busy := &middleware.Busy{}

	// ====== API ======
	api := r.Group("/api")

	prisonerHandler := handler.NewPrisonerHandler(d.Store, views, d.Logger)
	api.GET("/prisoners", prisonerHandler.List)
	api.GET("/prisoners/:id", prisonerHandler.Get)
	api.POST("/prisoners", prisonerHandler.Create)
	api.PUT("/prisoners/:id", prisonerHandler.Update)

	api.POST("/view/page", prisonerHandler.SetPage)
	api.POST("/view/filters", prisonerHandler.SetFilters)
	api.POST("/view/sort", prisonerHandler.ToggleSort)
	api.POST("/view/goto", prisonerHandler.GoTo)

	importExportHandler := handler.NewImportExportHandler(d.Store, d.Importer, views, d.Logger)
	api.POST("/import", busy.Guard(), importExportHandler.Import)
	api.GET("/export/csv", importExportHandler.ExportCSV)
	api.GET("/export/xlsx", importExportHandler.ExportXLSX)

	reportHandler := handler.NewReportHandler(d.Store, d.Composer, report.NewChat(d.Composer), views, d.Logger)
	reports := api.Group("/reports", busy.Guard())
	reports.POST("/summary", reportHandler.Summary)
	reports.POST("/range", reportHandler.DateRange)

	api.GET("/chat", reportHandler.Messages)
	api.POST("/chat", reportHandler.Send)
	api.POST("/chat/retry", reportHandler.Retry)

	return r, nil
}
