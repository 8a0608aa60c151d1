package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers routes that require authentication
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// PublicRouteRegistrar registers routes that are reachable without a token
type PublicRouteRegistrar interface {
	RegisterPublicRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration. Authenticated routes run behind
// the configured auth middleware, public routes do not.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	authMW     []gin.HandlerFunc
	registrars []RouteRegistrar
	public     []PublicRouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuthMiddleware sets the middleware applied to authenticated routes
func WithAuthMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMW = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a registrar. Registrars that also implement
// PublicRouteRegistrar get their public routes registered as well.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	if pub, ok := registrar.(PublicRouteRegistrar); ok {
		r.public = append(r.public, pub)
	}
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.public {
		registrar.RegisterPublicRoutes(api)
	}

	protected := api.Group("", r.authMW...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(protected)
	}
}
