package routes

import (
	"log/slog"
	"net/http"

	"github.com/daniel-lerner/lerners-game-tournament/handlers"
	"github.com/daniel-lerner/lerners-game-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Admin          middleware.TokenValidator
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	gameHandler *handlers.GameHandler,
	playerHandler *handlers.PlayerHandler,
	matchHandler *handlers.MatchHandler,
	commentaryHandler *handlers.CommentaryHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/ws", webSocketHandler.ServeWs)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/api/openapi.json")))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/openapi.json", handlers.OpenAPI)

		// Публичные маршруты: табло и форма матча открыты всем
		r.Get("/status", dashboardHandler.GetStatus)
		r.Get("/dashboard", dashboardHandler.GetDashboard)
		r.Get("/rankings", dashboardHandler.GetRankings)
		r.Get("/games", gameHandler.ListGames)
		r.Get("/players", playerHandler.ListPlayers)

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListMatches)
			r.Post("/", matchHandler.CommitMatch)
			r.Post("/preview", matchHandler.PreviewMatch)
		})

		r.Route("/commentary", func(r chi.Router) {
			r.Get("/", commentaryHandler.Latest)
			r.Post("/", commentaryHandler.Generate)
			r.Get("/audio", commentaryHandler.Audio)
			r.Post("/playback", commentaryHandler.Playback)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", authHandler.Login)

			// Защищенные маршруты только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(opts.Admin))

				r.Post("/players", playerHandler.RegisterPlayer)
				r.Delete("/players/{playerID}", playerHandler.DeletePlayer)
				r.Post("/players/{playerID}/avatar", playerHandler.UploadAvatar)

				r.Put("/games", gameHandler.ReplaceCatalog)
				r.Delete("/matches/{matchID}", matchHandler.RetractMatch)

				r.Post("/editions/{edition}/reset", matchHandler.ResetEdition)
				r.Delete("/editions/{edition}/players", playerHandler.ClearEdition)

				r.Post("/import/legacy", playerHandler.ImportLegacy)
				r.Post("/sync", adminHandler.Sync)
			})
		})
	})
}
