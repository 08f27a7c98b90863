package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookgo/inject"
	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	uuid "github.com/satori/go.uuid"
	"github.com/tryanzu/overflow/board/realtime"
	"github.com/tryanzu/overflow/core/config"
	"github.com/tryanzu/overflow/modules/api/controller"
	"github.com/tryanzu/overflow/modules/exceptions"
)

var log = logging.MustGetLogger("api")

type Module struct {
	Dependencies ModuleDI
	Controller   controller.API
	Errors       exceptions.ExceptionsModule
}

type ModuleDI struct {
	Config *config.Config `inject:""`
	Hub    *realtime.Hub  `inject:""`
}

// Router with every route mounted.
func (module *Module) Router() *gin.Engine {
	debug := module.Dependencies.Config.Development()
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(module.Errors.Middleware(debug))
	router.Use(RequestID())
	router.Use(CORS())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := module.Controller
	v1 := router.Group("/v1")

	// Flag routes
	v1.POST("/flags", api.NewFlag)
	v1.GET("/flags", api.PendingFlags)
	v1.GET("/flags/:fid", api.Flag)
	v1.POST("/flags/review", api.ReviewFlag)
	v1.POST("/flags/resolve", api.ResolveFlag)

	// Moderator actions
	v1.POST("/moderation/delete", api.DeletePost)
	v1.POST("/moderation/ban", api.Ban)
	v1.POST("/moderation/unban", api.Unban)
	v1.POST("/moderation/shadowban", api.ShadowBan)
	v1.POST("/moderation/unshadowban", api.UnshadowBan)
	v1.GET("/users/:username/banned", api.IsBanned)

	// Content routes
	v1.GET("/questions", api.Questions)
	v1.GET("/questions/:id", api.Question)
	v1.POST("/questions", api.Ask)
	v1.POST("/answers", api.Answer)
	v1.POST("/comments", api.Comment)
	v1.GET("/collections/:id", api.Collection)

	return router
}

func (module *Module) Run(bindTo string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := module.Dependencies.Hub
	hub.Start(ctx)
	defer hub.Close()

	h := http.NewServeMux()
	h.Handle("/glue/", hub)
	h.Handle("/", module.Router())

	// Start the http server as an isolated goroutine.
	srv := &http.Server{
		Addr:    bindTo,
		Handler: h,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()
	log.Infof("api listening on %s", bindTo)

	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown server ...")

	shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	log.Info("server exiting")
}

// Populate resolves the module fields from the objects already in g.
func (module *Module) Populate(g *inject.Graph) error {
	err := g.Provide(
		&inject.Object{Value: &module.Dependencies},
		&inject.Object{Value: &module.Controller},
		&inject.Object{Value: &module.Errors},
	)
	if err != nil {
		return err
	}
	return g.Populate()
}

// RequestID tags every request with an X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewV4().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With, X-Request-Id, Content-Length, Accept-Encoding, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}
