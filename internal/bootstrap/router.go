package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/arkiform/go-plan-backend/internal/api/http"
	apimw "github.com/arkiform/go-plan-backend/internal/api/http/middleware"
	authmw "github.com/arkiform/go-plan-backend/internal/auth/middleware"
	"github.com/arkiform/go-plan-backend/internal/collab"
	editorhttp "github.com/arkiform/go-plan-backend/internal/editor/http"
	"github.com/arkiform/go-plan-backend/internal/editor/repository"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/projects"
	"github.com/arkiform/go-plan-backend/internal/tools/credits"
	"github.com/arkiform/go-plan-backend/internal/tools/inference"
	"github.com/arkiform/go-plan-backend/internal/tools/pipeline"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	InferenceURL string
	CreditsURL   string
	DB           *pgxpool.Pool
	VersionDB    *sql.DB
	Redis        *redis.Client
	AuthClient   *fbauth.Client
}

// BuildRouter wires every repository and service behind the gin engine. It
// also returns the session manager so main can drive the autosave scheduler
// and flush sessions on shutdown.
func BuildRouter(dep RouterDeps) (*gin.Engine, *service.Manager) {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
	}))
	r.Use(apimw.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	projectRepo := projects.NewRepo(dep.DB)
	versionRepo := repository.NewVersionRepository(dep.VersionDB)
	draftRepo := repository.NewDraftRepository(dep.Redis)

	sessions := service.NewManager(projectRepo, versionRepo, draftRepo)
	hub := collab.NewHub(dep.Redis)
	pipe := pipeline.NewDefault(credits.New(dep.CreditsURL), inference.New(dep.InferenceURL))

	api := r.Group("/api/v1")
	api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))

	projectsGroup := api.Group("/projects")
	projects.Register(projectsGroup, projectRepo)
	editorhttp.RegisterProjectsSubroutes(projectsGroup, sessions, hub, pipe, versionRepo)

	return r, sessions
}
