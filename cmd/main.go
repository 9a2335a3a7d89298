package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/tedstonne/takkr-sub000/internal/app"
	"github.com/tedstonne/takkr-sub000/internal/challenge"
	"github.com/tedstonne/takkr-sub000/internal/config"
	"github.com/tedstonne/takkr-sub000/internal/controllers"
	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/realtime"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	userRepo := repositories.NewUserRepository(application.DB)
	boardRepo := repositories.NewBoardRepository(application.DB)
	noteRepo := repositories.NewNoteRepository(application.DB)
	memberRepo := repositories.NewMemberRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	challengeStore := challenge.NewStore(cfg.ChallengeTTL)
	registry := realtime.NewRegistry()

	sessionService := services.NewSessionService(cfg.SessionSecret, cfg.SessionTTL)
	ceremonyService := services.NewCeremonyService(
		userRepo, challengeStore, cfg.RPID, cfg.RPName, cfg.RPOrigin,
	)
	boardService := services.NewBoardService(boardRepo, noteRepo, memberRepo)
	noteService := services.NewNoteService(noteRepo, registry)
	memberService := services.NewMemberService(memberRepo, userRepo, registry)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(ceremonyService, sessionService, cfg)
	boardController := controllers.NewBoardController(boardService)
	noteController := controllers.NewNoteController(noteService)
	memberController := controllers.NewMemberController(memberService)
	eventsController := controllers.NewEventsController(registry)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	// /auth/v1 – the ceremonies themselves are unauthenticated
	authRouter := router.PathPrefix("/auth/v1").Subrouter()
	authRouter.HandleFunc("/register/challenge", authController.RegisterChallenge).Methods("POST")
	authRouter.HandleFunc("/register/verify", authController.RegisterVerify).Methods("POST")
	authRouter.HandleFunc("/login/challenge", authController.LoginChallenge).Methods("POST")
	authRouter.HandleFunc("/login/discover", authController.LoginDiscover).Methods("POST")
	authRouter.HandleFunc("/login/verify", authController.LoginVerify).Methods("POST")

	authProtected := router.PathPrefix("/auth/v1").Subrouter()
	authProtected.Use(middleware.AuthMiddleware(sessionService))
	authProtected.HandleFunc("/logout", authController.Logout).Methods("POST")

	// /api/v1 – everything here requires a session
	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.AuthMiddleware(sessionService))
	apiRouter.HandleFunc("/me", authController.Me).Methods("GET")
	apiRouter.HandleFunc("/boards", boardController.Create).Methods("POST")
	apiRouter.HandleFunc("/boards", boardController.List).Methods("GET")

	// Board-scoped endpoints: slug resolution + access check
	boardRouter := apiRouter.PathPrefix("/boards/{slug}").Subrouter()
	boardRouter.Use(middleware.BoardAccessMiddleware(boardRepo))
	boardRouter.HandleFunc("", boardController.State).Methods("GET")
	boardRouter.HandleFunc("/events", eventsController.Stream).Methods("GET")
	boardRouter.HandleFunc("/notes", noteController.Create).Methods("POST")
	boardRouter.HandleFunc("/notes/{noteID}", noteController.Update).Methods("PUT")
	boardRouter.HandleFunc("/notes/{noteID}", noteController.Delete).Methods("DELETE")
	boardRouter.HandleFunc("/notes/{noteID}/front", noteController.BringToFront).Methods("POST")

	// Owner-only endpoints
	ownerRouter := apiRouter.PathPrefix("/boards/{slug}").Subrouter()
	ownerRouter.Use(middleware.BoardAccessMiddleware(boardRepo), middleware.OwnerOnlyMiddleware())
	ownerRouter.HandleFunc("", boardController.Delete).Methods("DELETE")
	ownerRouter.HandleFunc("/members", memberController.Add).Methods("POST")
	ownerRouter.HandleFunc("/members/{username}", memberController.Remove).Methods("DELETE")

	//----------------------------------------------------------------------
	// Background work: challenge sweep + stream heartbeats
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc("*/5 * * * *", func() {
		if n := challengeStore.Sweep(); n > 0 {
			utils.Logger.Debugf("Swept %d expired ceremony challenges", n)
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule challenge sweep job")
	}
	c.Start()

	go func() {
		ticker := time.NewTicker(cfg.HeartbeatInterval)
		defer ticker.Stop()
		for range ticker.C {
			registry.Heartbeat()
		}
	}()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal(err)
	}
}
