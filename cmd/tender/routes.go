package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	getadmin "tender-backend/http-server/admin/get"
	saveadmin "tender-backend/http-server/admin/save"
	getattendance "tender-backend/http-server/attendance/get"
	saveattendance "tender-backend/http-server/attendance/save"
	"tender-backend/http-server/tender/documents"
	gettender "tender-backend/http-server/tender/get"
	savetender "tender-backend/http-server/tender/save"
	exportworkdone "tender-backend/http-server/workdone/export"
	getworkdone "tender-backend/http-server/workdone/get"
	saveworkdone "tender-backend/http-server/workdone/save"
	getworkers "tender-backend/http-server/workers/get"
	removeworkers "tender-backend/http-server/workers/remove"
	saveworkers "tender-backend/http-server/workers/save"
	updateworkers "tender-backend/http-server/workers/update"
	getworkorder "tender-backend/http-server/workorder/get"
	removeworkorder "tender-backend/http-server/workorder/remove"
	saveworkorder "tender-backend/http-server/workorder/save"
	updateworkorder "tender-backend/http-server/workorder/update"
	"tender-backend/internal/config"
	"tender-backend/internal/middleware/auth"
	"tender-backend/internal/middleware/metrics"
)

func routes(cfg *config.Config, log *slog.Logger, svc services, m *metrics.Metrics) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(m.Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/workdone", func(r chi.Router) {
		r.Post("/create", saveworkdone.Create(log, svc.workDone))
		r.Get("/list/{tender_id}", getworkdone.List(log, svc.workDone))
		r.Get("/details/{tender_id}/{workDoneId}", getworkdone.Details(log, svc.workDone))
		r.Get("/export/{tender_id}", exportworkdone.Register(log, svc.exports))
		r.Get("/export/{tender_id}/{workDoneId}", exportworkdone.Report(log, svc.exports))
	})

	router.Route("/api/workorder", func(r chi.Router) {
		r.Post("/create", saveworkorder.Create(log, svc.workOrders))
		r.Get("/list/{project_id}", getworkorder.List(log, svc.workOrders))
		r.Get("/details/{request_id}", getworkorder.Details(log, svc.workOrders))
		r.Post("/{request_id}/quotations", saveworkorder.AddQuotation(log, svc.workOrders))
		r.Put("/{request_id}/vendor", updateworkorder.SelectVendor(log, svc.workOrders))
		r.Put("/{request_id}/status", updateworkorder.UpdateStatus(log, svc.workOrders))
		r.Delete("/{request_id}", removeworkorder.Delete(log, svc.workOrders))
	})

	router.Route("/api/tender", func(r chi.Router) {
		r.Post("/create", savetender.Create(log, svc.tenders))
		r.Get("/list", gettender.List(log, svc.tenders))
		r.Get("/details/{tender_id}", gettender.Details(log, svc.tenders))
		r.Post("/{tender_id}/documents", documents.Upload(log, svc.tenders))
		r.Get("/{tender_id}/documents", documents.List(log, svc.tenders))
		r.Delete("/{tender_id}/documents/{document_id}", documents.Delete(log, svc.tenders))
	})

	router.Route("/api/workers", func(r chi.Router) {
		r.Post("/create", saveworkers.Create(log, svc.workforce))
		r.Get("/list", getworkers.List(log, svc.workforce))
		r.Get("/details/{worker_id}", getworkers.Details(log, svc.workforce))
		r.Put("/update/{worker_id}", updateworkers.Update(log, svc.workforce))
		r.Delete("/delete/{worker_id}", removeworkers.Delete(log, svc.workforce))
	})

	router.Route("/api/attendance", func(r chi.Router) {
		r.Post("/mark", saveattendance.Mark(log, svc.workforce))
		r.Get("/list/{tender_id}", getattendance.List(log, svc.workforce))
		r.Get("/summary/{tender_id}", getattendance.Summary(log, svc.workforce))
	})

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth("Tender admin", cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/idcodes", getadmin.IDCodes(log, svc.idCodes))
	adminRouter.Post("/idcodes", saveadmin.RegisterIDCode(log, svc.idCodes))

	router.Mount("/api/admin", adminRouter)

	return router
}
