package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/gaming-portal/handlers"
	"github.com/Dosada05/gaming-portal/middleware"
	"github.com/Dosada05/gaming-portal/models"
)

// Handlers собирает все HTTP обработчики приложения.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Game       *handlers.GameHandler
	Team       *handlers.TeamHandler
	Tournament *handlers.TournamentHandler
	Match      *handlers.MatchHandler
	Backup     *handlers.BackupHandler
	Live       *handlers.LiveHandler
}

func SetupRoutes(router chi.Router, h Handlers, tokens *middleware.TokenManager, allowedOrigins []string, logger *slog.Logger) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(tokens, logger)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	playerOnly := middleware.RequireRole(models.RolePlayer)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	// Публичные маршруты
	router.Get("/leaderboard", h.Player.Leaderboard)
	router.Get("/games", h.Game.List)
	router.Get("/teams", h.Team.ListTeams)
	router.Get("/ws/{topic}", h.Live.ServeWs)

	// Администратор
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Post("/games", h.Game.Create)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.List)
			r.Delete("/", h.Player.Delete)
			r.Post("/restore", h.Player.Restore)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.Post("/", h.Tournament.CreateHandler)
			r.Delete("/", h.Tournament.DeleteHandler)
			r.Post("/restore", h.Tournament.RestoreHandler)
			r.Put("/{tournamentID}", h.Tournament.UpdateHandler)
			r.Put("/{tournamentID}/winner", h.Tournament.WinnerHandler)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Match.ListHandler)
			r.Post("/", h.Match.CreateHandler)
			r.Delete("/", h.Match.DeleteHandler)
			r.Post("/restore", h.Match.RestoreHandler)
			r.Put("/{matchID}", h.Match.UpdateHandler)
		})

		r.Post("/backup", h.Backup.Export)
	})

	// Игрок
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(playerOnly)

		r.Route("/me", func(r chi.Router) {
			r.Get("/profile", h.Player.Profile)
			r.Get("/games", h.Game.ListMine)
			r.Put("/games", h.Game.ReplaceMine)
			r.Get("/tournaments", h.Tournament.ListMineHandler)
			r.Post("/tournaments/{tournamentID}/register", h.Tournament.RegisterHandler)
		})

		r.Post("/teams", h.Team.CreateTeam)
		r.Post("/teams/join", h.Team.JoinTeam)
	})

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
}
