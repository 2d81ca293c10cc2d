package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	app "profileserv/src/app"
	cfg "profileserv/src/configuration"
	"profileserv/src/logger"
	db "profileserv/src/repository"
)

const maxUploadMemory = 8 << 20

func RunServer(config *cfg.Properties) {
	router := gin.Default()
	router.MaxMultipartMemory = maxUploadMemory
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(static.Serve("/", static.LocalFile(config.Server.StaticDir, false)))

	auth := app.NewAuthClient(config.Provider.URL, config.Provider.ServiceKey, config.Provider.ReadTimeout)
	storage, err := newStorage(config)
	if err != nil {
		logger.Log.Fatalf("could not set up storage backend: %v", err)
	}
	profiles := db.NewRestProfileDB(config.Provider.URL, config.Provider.ServiceKey, config.Provider.ReadTimeout)

	handler := NewHandler(config, auth, storage, profiles)
	registerRoutes(router, handler)

	if config.LogLevel == "debug" {
		pprof.Register(router)
	}

	router.NoRoute(func(ctx *gin.Context) { ctx.JSON(http.StatusNotFound, gin.H{}) })
	// Start the server
	router.Run(fmt.Sprintf(":%s", config.Server.Port))
}

func registerRoutes(router *gin.Engine, handler *AppHandler) {
	router.GET("/health", handler.GetHealth)
	router.POST("/upload", handler.Upload)
	router.DELETE("/delete-image", handler.DeleteImage)
	router.PUT("/update-pic", handler.UpdatePic)
	router.PUT("/update-bio", handler.UpdateBio)
	router.POST("/sign-up", handler.SignUp)
	router.POST("/sign-in", handler.SignIn)
	router.GET("/user", handler.GetUser)
	router.GET("/user-data", handler.UserData)
	router.GET("/sign-out", handler.SignOut)
}

func newStorage(config *cfg.Properties) (app.ObjectStorage, error) {
	if config.Storage.Backend == "s3" {
		return app.NewS3Storage(
			config.S3.Host,
			config.S3.AccessKey,
			config.S3.SecretKey,
			config.Storage.Bucket,
			config.S3.UseSSL)
	}
	return app.NewProviderStorage(
		config.Provider.URL,
		config.Provider.ServiceKey,
		config.Storage.Bucket,
		config.Provider.ReadTimeout), nil
}
