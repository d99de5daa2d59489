package server

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"main/internal/config"
	"main/internal/database"
	"main/internal/google"
	"main/internal/handler"
	"main/internal/identity"
	"main/internal/middleware"
	"main/internal/state"
	"main/internal/sync"
)

type Server struct {
	*gin.Engine
}

func New(cfg *config.Config, db *sql.DB, log *zap.Logger) *Server {
	users := database.NewUserStore(db)
	accounts := database.NewAccountStore(db)
	events := database.NewEventStore(db)

	gc := google.NewClient(cfg, log)
	resolver := identity.NewResolver(users, log)
	engine := sync.NewEngine(accounts, events, gc, gc, log)
	guard := state.NewGuard(cfg.FrontendBaseURL, log)

	h := handler.New(users, accounts, gc, engine, resolver, guard, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendBaseURL},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type"},
	}))

	r.GET("/", h.Home)
	r.GET("/usuarios", h.ListUsers)
	r.POST("/usuarios", h.CreateUser)

	api := r.Group("/api/google")
	{
		api.GET("/auth", h.InitGoogleOAuth)
		api.GET("/callback", h.GoogleCallback)
		api.POST("/callback", h.GoogleCallback)
		api.GET("/events", h.GoogleEvents)
		api.POST("/events", h.GoogleEvents)
	}

	return &Server{r}
}
