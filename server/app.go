package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haspd/config"
	"haspd/internal/db"
	"haspd/internal/devices"
	"haspd/internal/ha"
	"haspd/internal/hayaml"
	"haspd/internal/health"
	"haspd/internal/importsvc"
	"haspd/internal/layouts"
	"haspd/internal/logs"
	"haspd/internal/middleware"
	"haspd/internal/models"
	"haspd/internal/publish"
	"haspd/internal/validate"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const version = "1.0.0"

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	// 1) Logging
	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// 2) DB (optional — without it layouts live in memory)
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			logs.Logger.Fatalf("db open failed: %v", err)
		}
		a.db = d
		if err := a.db.AutoMigrate(
			&models.Layout{},
			&models.DeployRecord{},
		); err != nil {
			logs.Logger.Fatalf("db migrate failed: %v", err)
		}
	}

	// 3) Router + middleware
	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	a.RegisterWebUI("/ui/")

	// 4) Health
	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db)
	} else {
		health.RegisterRoutes(a.Router)
	}

	// 5) HA gateway + device discovery
	haClient := ha.NewClient(
		a.cfg.HomeAssistant.URL,
		a.cfg.HomeAssistant.Token,
		time.Duration(a.cfg.HomeAssistant.TimeoutSec)*time.Second,
	)
	deviceSvc := devices.NewService(haClient)
	validator := validate.NewService(deviceSvc, deviceSvc)

	ha.NewHTTP(haClient).RegisterRoutes(a.Router)
	devices.NewHTTP(deviceSvc).RegisterRoutes(a.Router)

	// 6) Layout store: gorm-backed when a DB is configured
	var store layouts.Store
	if a.db != nil {
		store = layouts.NewDBStore(a.db)
	} else {
		store = layouts.NewMemStore()
	}
	layouts.NewHTTP(store).RegisterRoutes(a.Router)

	// 7) Deploy pipeline + import + YAML package generation
	publisher := publish.New(a.cfg.HomeAssistant.ConfigPath, haClient, validator, deviceSvc, a.db)
	publish.NewHTTP(publisher).RegisterRoutes(a.Router)

	imports := importsvc.NewService(a.cfg.HomeAssistant.ConfigPath)
	importsvc.NewHTTP(imports, validator).RegisterRoutes(a.Router)

	hayaml.NewHTTP().RegisterRoutes(a.Router)

	// 8) Status
	a.Router.HandleFunc("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": "openHASP Designer Backend",
			"version": version,
		})
	}).Methods(http.MethodGet)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		logs.Logger.Debugf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
