// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	conversationsfeature "github.com/scribeworks/scribehub/internal/app/features/conversations"
	errorsfeature "github.com/scribeworks/scribehub/internal/app/features/errors"
	groupsfeature "github.com/scribeworks/scribehub/internal/app/features/groups"
	healthfeature "github.com/scribeworks/scribehub/internal/app/features/health"
	homefeature "github.com/scribeworks/scribehub/internal/app/features/home"
	loginfeature "github.com/scribeworks/scribehub/internal/app/features/login"
	logoutfeature "github.com/scribeworks/scribehub/internal/app/features/logout"
	_ "github.com/scribeworks/scribehub/internal/app/features/shared/views"
	statusfeature "github.com/scribeworks/scribehub/internal/app/features/status"
	transcriptsfeature "github.com/scribeworks/scribehub/internal/app/features/transcripts"
	"github.com/scribeworks/scribehub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. ScribeHub initializes the template
// engine, applies session and CSRF middleware, and mounts feature routers
// for the application areas: home, auth, groups, transcript settings,
// conversations, and the admin status page.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey,
		appCfg.SessionName,
		appCfg.SessionDomain,
		appCfg.SessionMaxAge,
		secure,
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts. Tokens are injected into pages
	// through the base view model.
	r.Use(csrf.Protect(
		[]byte(appCfg.CSRFKey),
		csrf.Secure(secure),
		csrf.Path("/"),
	))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Group management
	groupsHandler := groupsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Transcript recorder settings and processing history
	transcriptsHandler := transcriptsfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/transcripts", transcriptsfeature.Routes(transcriptsHandler, sessionMgr))

	// Conversation viewer
	conversationsHandler := conversationsfeature.NewHandler(assistantClient, logger)
	r.Mount("/conversations", conversationsfeature.Routes(conversationsHandler, sessionMgr))

	// Admin status page with document sync counters
	statusHandler := statusfeature.NewHandler(deps.MongoClient, syncRegistry, logger)
	r.Mount("/admin/status", statusfeature.Routes(statusHandler, sessionMgr))

	return r, nil
}
