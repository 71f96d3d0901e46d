package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"naimuModeration/internal/metrics"
	"naimuModeration/internal/models"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, requestID, app.logRequest, secureHeaders)
	authMiddleware := standardMiddleware.Append(app.requireRole(models.RoleUser))
	adminAuthMiddleware := standardMiddleware.Append(app.requireRole(models.RoleAdmin))

	route := func(name string, chain alice.Chain, fn http.HandlerFunc) http.Handler {
		return metrics.Instrument(name, chain.ThenFunc(fn))
	}

	mux := pat.New()

	mux.Get("/health", standardMiddleware.ThenFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	mux.Get("/metrics", metrics.Handler())

	// Users
	mux.Post("/user/sign_in", route("sign_in", standardMiddleware, app.userHandler.SignIn))
	mux.Put("/admin/users/:id/ban", route("ban_user", adminAuthMiddleware, app.userHandler.BanUser))

	// Advertisements
	mux.Post("/ads", route("create_ad", authMiddleware, app.adHandler.CreateAd))
	mux.Get("/ads/:id", route("get_ad", authMiddleware, app.adHandler.GetAd))
	mux.Put("/ads/:id", route("update_ad", authMiddleware, app.adHandler.UpdateAd))
	mux.Del("/ads/:id", route("delete_ad", authMiddleware, app.adHandler.DeleteAd))
	mux.Post("/ads/:id/submit", route("submit_ad", authMiddleware, app.adHandler.SubmitAd))
	mux.Post("/ads/:id/archive", route("archive_ad", authMiddleware, app.adHandler.ArchiveAd))

	// Admin review queue
	mux.Get("/admin/ads/pending", route("pending_ads", adminAuthMiddleware, app.adHandler.ListPending))
	mux.Post("/admin/ads/:id/approve", route("approve_ad", adminAuthMiddleware, app.adHandler.ApproveAd))
	mux.Post("/admin/ads/:id/reject", route("reject_ad", adminAuthMiddleware, app.adHandler.RejectAd))

	// Reports
	mux.Post("/reports", route("create_report", authMiddleware, app.reportHandler.CreateReport))
	mux.Get("/admin/reports", route("list_reports", adminAuthMiddleware, app.reportHandler.ListReports))
	mux.Post("/admin/reports/delete-advertisement", route("delete_reported_ad", adminAuthMiddleware, app.reportHandler.DeleteReportedAdvertisement))
	mux.Post("/admin/reports/:id/resolve", route("resolve_report", adminAuthMiddleware, app.reportHandler.ResolveReport))

	// Notifications
	mux.Get("/notifications", route("list_notifications", authMiddleware, app.notificationHandler.ListNotifications))
	mux.Put("/notifications/:id/read", route("read_notification", authMiddleware, app.notificationHandler.MarkRead))
	mux.Put("/notifications/:id/archive", route("archive_notification", authMiddleware, app.notificationHandler.Archive))
	// Not instrumented: the websocket upgrade needs the raw ResponseWriter.
	mux.Get("/ws/notifications", authMiddleware.ThenFunc(app.notificationHandler.Stream))

	return mux
}
