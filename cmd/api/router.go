package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/config"
	"github.com/campushq/labops/internal/handlers"
	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/middleware"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/repo"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// newRouter builds the full API router: repos, lifecycle managers, handlers
// and the middleware chain. The dispatcher is owned by the caller so tests
// can pass one with no senders.
func newRouter(db *sql.DB, cfg config.Config, dispatcher *notify.Dispatcher) chi.Router {
	opTimeout := time.Duration(cfg.OpTimeoutSeconds) * time.Second

	audit := repo.NewAuditRepo(db)

	campusMgr := lifecycle.NewManager(db, repo.NewCampusRepo(db), audit, lifecycle.Descriptor[models.Campus]{
		EntityType: rbac.ResourceCampus,
		Validate: func(c *models.Campus) error {
			if c.Name == "" || c.Code == "" {
				return apperr.Validation("name and code are required")
			}
			return nil
		},
		CampusID: func(c *models.Campus) int { return c.ID },
	}).WithTimeout(opTimeout)

	labMgr := lifecycle.NewManager(db, repo.NewLabRepo(db), audit, lifecycle.Descriptor[models.Lab]{
		EntityType: rbac.ResourceLab,
		Validate: func(l *models.Lab) error {
			if l.CampusID <= 0 || l.Name == "" {
				return apperr.Validation("campus_id and name are required")
			}
			if l.Capacity < 0 {
				return apperr.Validation("capacity must not be negative")
			}
			return nil
		},
		CampusID: func(l *models.Lab) int { return l.CampusID },
	}).WithTimeout(opTimeout)

	equipmentMgr := lifecycle.NewManager(db, repo.NewEquipmentRepo(db), audit, lifecycle.Descriptor[models.Equipment]{
		EntityType: rbac.ResourceEquipment,
		Validate: func(e *models.Equipment) error {
			if e.CampusID <= 0 || e.LabID <= 0 || e.Name == "" {
				return apperr.Validation("campus_id, lab_id and name are required")
			}
			if !models.ValidEquipmentStatus(e.Status) {
				return apperr.Validation("unknown equipment status " + e.Status)
			}
			return nil
		},
		CampusID: func(e *models.Equipment) int { return e.CampusID },
	}).WithTimeout(opTimeout)

	incidentMgr := lifecycle.NewManager(db, repo.NewIncidentRepo(db), audit, lifecycle.Descriptor[models.Incident]{
		EntityType: rbac.ResourceIncident,
		Validate: func(i *models.Incident) error {
			if i.CampusID <= 0 || i.LabID <= 0 || i.Title == "" {
				return apperr.Validation("campus_id, lab_id and title are required")
			}
			if !models.ValidPriority(i.Priority) {
				return apperr.Validation("unknown priority " + i.Priority)
			}
			return nil
		},
		CampusID: func(i *models.Incident) int { return i.CampusID },
	}).WithTimeout(opTimeout)

	maintenanceMgr := lifecycle.NewManager(db, repo.NewMaintenanceRepo(db), audit, lifecycle.Descriptor[models.Maintenance]{
		EntityType: rbac.ResourceMaintenance,
		Validate: func(m *models.Maintenance) error {
			if m.CampusID <= 0 || m.EquipmentID <= 0 || m.Title == "" {
				return apperr.Validation("campus_id, equipment_id and title are required")
			}
			if m.Cost < 0 {
				return apperr.Validation("cost must not be negative")
			}
			return nil
		},
		CampusID: func(m *models.Maintenance) int { return m.CampusID },
	}).WithTimeout(opTimeout)

	eventMgr := lifecycle.NewManager(db, repo.NewEventRepo(db), audit, lifecycle.Descriptor[models.Event]{
		EntityType: rbac.ResourceEvent,
		Validate: func(e *models.Event) error {
			if e.CampusID <= 0 || e.Title == "" {
				return apperr.Validation("campus_id and title are required")
			}
			if !e.StartAt.Before(e.EndAt) {
				return apperr.Validation("start_at must be before end_at")
			}
			return nil
		},
		CampusID: func(e *models.Event) int { return e.CampusID },
	}).WithTimeout(opTimeout)

	authH := &handlers.AuthHandler{
		UserRepo:    repo.NewUserRepo(db),
		Secret:      []byte(cfg.JWTSecret),
		ExpireHours: cfg.JWTExpireHours,
	}
	auditH := &handlers.AuditHandler{Repo: audit}
	notifH := &handlers.NotificationHandler{Repo: repo.NewNotificationRepo(db)}
	reportsH := &handlers.ReportsHandler{
		Incidents:   repo.NewIncidentRepo(db),
		Equipment:   repo.NewEquipmentRepo(db),
		Maintenance: repo.NewMaintenanceRepo(db),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(middleware.MaxBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		if err := db.PingContext(req.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.AuthRateLimiter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter.Middleware).Post("/register", authH.Register)
			r.With(authLimiter.Middleware).Post("/login", authH.Login)
			r.With(middleware.JWT(authH.Secret)).Get("/me", authH.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWT(authH.Secret))

			r.Route("/campuses", handlers.NewCampusHandler(campusMgr).Mount)
			r.Route("/labs", handlers.NewLabHandler(labMgr).Mount)
			r.Route("/equipment", handlers.NewEquipmentHandler(equipmentMgr).Mount)
			r.Route("/incidents", handlers.NewIncidentHandler(incidentMgr, dispatcher).Mount)
			r.Route("/maintenance", handlers.NewMaintenanceHandler(maintenanceMgr, dispatcher).Mount)
			r.Route("/events", handlers.NewEventHandler(eventMgr).Mount)

			r.Route("/notifications", notifH.Mount)

			r.Route("/audit", func(r chi.Router) {
				r.Get("/", auditH.List)
				r.Get("/{entityType}/{id}", auditH.EntityHistory)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/incidents-summary", reportsH.IncidentsSummary)
				r.Get("/equipment-health", reportsH.EquipmentHealth)
				r.Get("/maintenance-cost", reportsH.MaintenanceCost)
			})
		})
	})

	return r
}
