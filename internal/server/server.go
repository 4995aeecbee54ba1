package server

import (
	"context"
	"net/http"
	"time"

	"github.com/IAmRubenNavarro/doula-life/internal/appointment"
	appointmentdomain "github.com/IAmRubenNavarro/doula-life/internal/appointment/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/auth"
	authdomain "github.com/IAmRubenNavarro/doula-life/internal/auth/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/catalog"
	catalogdomain "github.com/IAmRubenNavarro/doula-life/internal/catalog/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/config"
	"github.com/IAmRubenNavarro/doula-life/internal/consent"
	consentdomain "github.com/IAmRubenNavarro/doula-life/internal/consent/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/enrollment"
	enrollmentdomain "github.com/IAmRubenNavarro/doula-life/internal/enrollment/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/observability"
	obsmiddleware "github.com/IAmRubenNavarro/doula-life/internal/observability/logger"
	obsmetrics "github.com/IAmRubenNavarro/doula-life/internal/observability/metrics"
	obstracing "github.com/IAmRubenNavarro/doula-life/internal/observability/tracing"
	"github.com/IAmRubenNavarro/doula-life/internal/payment"
	"github.com/IAmRubenNavarro/doula-life/internal/payment/adapters"
	paymentdomain "github.com/IAmRubenNavarro/doula-life/internal/payment/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/providers/pdf"
	"github.com/IAmRubenNavarro/doula-life/internal/ratelimit"
	"github.com/IAmRubenNavarro/doula-life/internal/training"
	trainingdomain "github.com/IAmRubenNavarro/doula-life/internal/training/domain"
	"github.com/IAmRubenNavarro/doula-life/internal/user"
	userdomain "github.com/IAmRubenNavarro/doula-life/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	auth.Module,
	user.Module,
	catalog.Module,
	appointment.Module,
	training.Module,
	enrollment.Module,
	consent.Module,
	payment.Module,
	pdf.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		stripeConfigured := adapters.Configured(cfg, paymentdomain.ProviderStripe)
		paypalConfigured := adapters.Configured(cfg, paymentdomain.ProviderPayPal)
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"providers": gin.H{
				"stripe": gin.H{
					"configured": stripeConfigured,
					"ready":      stripeConfigured,
				},
				"paypal": gin.H{
					"configured": paypalConfigured,
					"ready":      paypalConfigured,
				},
			},
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	authsvc        authdomain.Service
	usersvc        userdomain.Service
	catalogSvc     catalogdomain.Service
	appointmentSvc appointmentdomain.Service
	trainingSvc    trainingdomain.Service
	enrollmentSvc  enrollmentdomain.Service
	consentSvc     consentdomain.Service
	paymentSvc     paymentdomain.Service
	webhookSvc     paymentdomain.WebhookService
	receipts       pdf.Renderer
	limiter        *ratelimit.Limiter
	paymentsCfg    *config.PaymentsConfigHolder
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Authsvc        authdomain.Service
	Usersvc        userdomain.Service
	CatalogSvc     catalogdomain.Service
	AppointmentSvc appointmentdomain.Service
	TrainingSvc    trainingdomain.Service
	EnrollmentSvc  enrollmentdomain.Service
	ConsentSvc     consentdomain.Service
	PaymentSvc     paymentdomain.Service
	WebhookSvc     paymentdomain.WebhookService
	Receipts       pdf.Renderer
	Limiter        *ratelimit.Limiter
	PaymentsCfg    *config.PaymentsConfigHolder
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		authsvc:        p.Authsvc,
		usersvc:        p.Usersvc,
		catalogSvc:     p.CatalogSvc,
		appointmentSvc: p.AppointmentSvc,
		trainingSvc:    p.TrainingSvc,
		enrollmentSvc:  p.EnrollmentSvc,
		consentSvc:     p.ConsentSvc,
		paymentSvc:     p.PaymentSvc,
		webhookSvc:     p.WebhookSvc,
		receipts:       p.Receipts,
		limiter:        p.Limiter,
		paymentsCfg:    p.PaymentsCfg,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.limiter.Login(), s.Login)
	auth.GET("/protected", s.AuthRequired(), s.Protected)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())

	// -------- Users --------
	api.GET("/users", s.ListUsers)
	api.POST("/users", s.CreateUser)
	api.GET("/users/:id", s.GetUserByID)

	// -------- Catalog services --------
	api.GET("/services", s.ListServices)
	api.POST("/services", s.CreateService)
	api.GET("/services/:id", s.GetServiceByID)
	api.PATCH("/services/:id", s.UpdateService)
	api.DELETE("/services/:id", s.DeleteService)

	// -------- Appointments --------
	api.GET("/appointments", s.ListAppointments)
	api.POST("/appointments", s.CreateAppointment)
	api.GET("/appointments/:id", s.GetAppointmentByID)
	api.PATCH("/appointments/:id", s.UpdateAppointment)
	api.DELETE("/appointments/:id", s.DeleteAppointment)

	// -------- Trainings --------
	api.GET("/trainings", s.ListTrainings)
	api.POST("/trainings", s.CreateTraining)
	api.GET("/trainings/:id", s.GetTrainingByID)
	api.PATCH("/trainings/:id", s.UpdateTraining)
	api.DELETE("/trainings/:id", s.DeleteTraining)

	// -------- Enrollments --------
	api.GET("/enrollments", s.ListEnrollments)
	api.POST("/enrollments", s.CreateEnrollment)
	api.GET("/enrollments/:id", s.GetEnrollmentByID)
	api.PATCH("/enrollments/:id", s.UpdateEnrollment)
	api.DELETE("/enrollments/:id", s.DeleteEnrollment)

	// -------- Consents --------
	api.GET("/consents", s.ListConsents)
	api.POST("/consents", s.CreateConsent)
	api.GET("/consents/:id", s.GetConsentByID)
	api.PATCH("/consents/:id", s.UpdateConsent)
	api.DELETE("/consents/:id", s.DeleteConsent)

	// -------- Payments --------
	api.GET("/payments", s.ListPayments)
	api.POST("/payments", s.CreatePayment)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.PATCH("/payments/:id", s.UpdatePayment)
	api.DELETE("/payments/:id", s.DeletePayment)
	api.GET("/payments/:id/receipt", s.RenderPaymentReceipt)
	api.POST("/payments/paypal/capture/:payment_id", s.CapturePayPalPayment)

	if s.cfg.Environment != "production" {
		api.POST("/test/cleanup", s.TestCleanup)
	}
}

// registerWebhookRoutes mounts the provider callback endpoint outside the
// authenticated API group: providers sign their deliveries instead of
// carrying bearer tokens.
func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/:provider", s.limiter.Webhook(), s.HandlePaymentWebhook)
}
