package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizforge-backend/internal/handlers"
	"quizforge-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	generateHandler *handlers.GenerateHandler,
	mediaHandler *handlers.MediaHandler,
	summaryHandler *handlers.SummaryHandler,
	explainHandler *handlers.ExplainHandler,
	uploadHandler *handlers.UploadHandler,
	youtubeHandler *handlers.YouTubeHandler,
	translateHandler *handlers.TranslateHandler,
	billingHandler *handlers.BillingHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout and profile require auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})
		})

		// ──── Generation Routes ────
		// Anonymous requests are allowed; a valid bearer token identifies
		// the user so the daily quota applies.
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.OptionalMiddleware)
			r.Post("/generate-questions", generateHandler.GenerateQuestions)
			r.Post("/media-to-questions", mediaHandler.MediaToQuestions)
			r.Post("/youtube-to-questions", youtubeHandler.YouTubeToQuestions)
			r.Post("/summarize", summaryHandler.Summarize)
			r.Post("/explain-feedback", explainHandler.ExplainFeedback)
		})

		// ──── Upload Routes ────
		r.Post("/get-upload-url", uploadHandler.GetUploadURL)
		r.Post("/upload-file", uploadHandler.UploadFile)

		// ──── Translation ────
		r.Post("/translate", translateHandler.Translate)

		// ──── Billing Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/create-checkout-session", billingHandler.CreateCheckoutSession)
			r.Post("/create-portal-session", billingHandler.CreatePortalSession)
		})
		r.Post("/stripe-webhook", billingHandler.StripeWebhook)
	})

	return r
}
