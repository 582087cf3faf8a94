package router

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every handler that owns routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// mount is a registrar attached under a prefix with its own middleware
type mount struct {
	prefix     string
	registrar  RouteRegistrar
	middleware []gin.HandlerFunc
}

// Router collects registrars and attaches them under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	mounts     []mount
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the API version segment ("v1" by default)
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = strings.Trim(version, "/")
	}
}

// NewRouter creates a Router on engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register attaches registrar directly under the API root
func (r *Router) Register(registrar RouteRegistrar) *Router {
	return r.Mount("", registrar)
}

// Mount attaches registrar under prefix; middleware runs only for its routes
func (r *Router) Mount(prefix string, registrar RouteRegistrar, middleware ...gin.HandlerFunc) *Router {
	r.mounts = append(r.mounts, mount{prefix: prefix, registrar: registrar, middleware: middleware})
	return r
}

// Setup registers every mount and returns the resulting route table
func (r *Router) Setup() gin.RoutesInfo {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, m := range r.mounts {
		group := api
		if m.prefix != "" || len(m.middleware) > 0 {
			group = api.Group(m.prefix, m.middleware...)
		}
		m.registrar.RegisterRoutes(group)
	}
	return r.engine.Routes()
}

// RegistrarFunc adapts a plain function to RouteRegistrar
type RegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes implements RouteRegistrar
func (f RegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }
