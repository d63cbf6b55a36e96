package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/medicore/hospital-api/internal/middleware"
)

// Handler registers its routes on the versioned API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitEnabled  bool
	RateLimit         rate.Limit
	RateBurst         int
	RequestTimeout    time.Duration
	CORSConfig        middleware.CORSConfig
	PrometheusEnabled bool
	MetricsPath       string
}

type Router struct {
	engine  *gin.Engine
	metrics *httpMetrics
}

type httpMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (m *httpMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
	}
}

// NewRouter wires middleware and routes. Public routes: health, metrics and
// auth; everything else sits behind the bearer-token middleware.
func NewRouter(
	log zerolog.Logger,
	authMW *middleware.AuthMiddleware,
	authH Handler,
	patientH Handler,
	doctorH Handler,
	appointmentH Handler,
	prescriptionH Handler,
	healthH interface{ RegisterRoutes(*gin.Engine) },
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS(config.CORSConfig))
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	var metrics *httpMetrics
	if config.PrometheusEnabled {
		metrics = newHTTPMetrics()
		engine.Use(metrics.middleware())
		engine.GET(config.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	healthH.RegisterRoutes(engine)

	api := engine.Group("/api/v1")
	authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authMW.Authenticate())
	patientH.RegisterRoutes(protected)
	doctorH.RegisterRoutes(protected)
	appointmentH.RegisterRoutes(protected)
	prescriptionH.RegisterRoutes(protected)

	return &Router{engine: engine, metrics: metrics}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
