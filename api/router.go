package api

import (
	"net/http"

	"github.com/Domenick1991/expertbooking/internal/service/booking"
	"github.com/Domenick1991/expertbooking/internal/service/experts"
	"github.com/Domenick1991/expertbooking/internal/websocket"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Production     bool
	AllowedOrigins []string
	WebsocketPath  string
	ClientBuffer   int
}

type Services struct {
	Experts  experts.ExpertUseCase
	Bookings booking.BookingUseCase
	Hub      *websocket.Hub
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig, svc Services, log *zap.Logger) http.Handler {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	errs := NewErrorWriter(cfg.Production, log)

	router := gin.New()
	router.Use(Recovery(errs), RequestLogger(log))

	group := router.Group("/api")
	group.GET("/health", Health)
	NewExpertHandler(svc.Experts, errs).Register(group.Group("/experts"))
	NewBookingHandler(svc.Bookings, errs).Register(group.Group("/bookings"))

	if svc.Hub != nil {
		live := NewLiveHandler(svc.Hub, cfg.AllowedOrigins, cfg.ClientBuffer, log)
		router.GET(cfg.WebsocketPath, live.Serve)
	}
	if svc.Metrics != nil {
		router.GET("/metrics", gin.WrapH(svc.Metrics))
	}

	router.NoRoute(NotFound)
	return CORS(cfg.AllowedOrigins)(router)
}
