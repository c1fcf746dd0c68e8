package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router builds the HTTP handler for the service. Empty credentials disable auth.
func Router(user, pass string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BasicAuth(user, pass))

		r.Get("/reference", GetReference)

		// Distributors
		r.Get("/distributors", ListDistributors)
		r.Post("/distributors", CreateDistributor)
		r.Post("/distributors/import", ImportDistributors)
		r.Get("/distributors/{id}", GetDistributor)
		r.Put("/distributors/{id}", UpdateDistributor)
		r.Delete("/distributors/{id}", DeleteDistributor)

		// Categories
		r.Get("/categories", ListCategories)
		r.Post("/categories", CreateCategory)
		r.Get("/categories/{id}", GetCategory)
		r.Put("/categories/{id}", UpdateCategory)
		r.Delete("/categories/{id}", DeleteCategory)

		// Articles
		r.Get("/articles", ListArticles)
		r.Post("/articles", CreateArticle)
		r.Post("/articles/import", ImportArticles)
		r.Get("/articles/{id}", GetArticle)
		r.Put("/articles/{id}", UpdateArticle)
		r.Delete("/articles/{id}", DeleteArticle)

		// Schemes
		r.Get("/schemes", ListSchemes)
		r.Post("/schemes", CreateScheme)
		r.Get("/schemes/{id}", GetScheme)
		r.Put("/schemes/{id}", UpdateScheme)
		r.Delete("/schemes/{id}", DeleteScheme)
		r.Get("/schemes/{id}/calculations", GetSchemeCalculations)
		r.Get("/schemes/{id}/summary", GetSchemeSummary)

		// Sales
		r.Get("/sales", ListSales)
		r.Post("/sales/upload", UploadSales)
		r.Get("/sales/uploads", ListSalesUploads)
		r.Delete("/sales/uploads/{id}", DeleteSalesUpload)

		// Dashboard
		r.Get("/dashboard", GetDashboard)
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	return r
}
