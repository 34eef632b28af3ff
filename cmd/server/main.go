package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"motorserve/internal/api"
	"motorserve/internal/auth"
	"motorserve/internal/db"
	"motorserve/internal/repository"
	"motorserve/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	catalogRepo := repository.NewCatalogRepository(database)
	centerRepo := repository.NewCenterRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	inventoryRepo := repository.NewInventoryRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	analyticsRepo := repository.NewAnalyticsRepository(database)

	notifier := service.NewNotifierService(userRepo, notificationRepo)
	authSvc := service.NewAuthService(userRepo)
	vehicleSvc := service.NewVehicleService(vehicleRepo)
	catalogSvc := service.NewCatalogService(catalogRepo, centerRepo)
	bookingSvc := service.NewBookingService(bookingRepo, vehicleRepo, catalogRepo, centerRepo, notifier)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, bookingRepo, notifier)
	inventorySvc := service.NewInventoryService(inventoryRepo)
	notificationSvc := service.NewNotificationService(notificationRepo)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, bookingRepo)

	authHandler := api.NewAuthHandler(authSvc)
	vehicleHandler := api.NewVehicleHandler(vehicleSvc)
	catalogHandler := api.NewCatalogHandler(catalogSvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)
	invoiceHandler := api.NewInvoiceHandler(invoiceSvc)
	inventoryHandler := api.NewInventoryHandler(inventorySvc)
	notificationHandler := api.NewNotificationHandler(notificationSvc)
	centerHandler := api.NewCenterHandler(catalogSvc, analyticsSvc)
	adminHandler := api.NewAdminHandler(userRepo, catalogSvc, invoiceSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/centers", catalogHandler.ListCenters).Methods("GET")
	r.HandleFunc("/api/centers/{id}", catalogHandler.GetCenter).Methods("GET")
	r.HandleFunc("/api/centers/{id}/services", catalogHandler.ListCenterServices).Methods("GET")
	r.HandleFunc("/api/categories", catalogHandler.ListCategories).Methods("GET")

	// Authenticated endpoints
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(userRepo))

	authed.HandleFunc("/me", authHandler.Me).Methods("GET")

	authed.HandleFunc("/vehicles", vehicleHandler.Create).Methods("POST")
	authed.HandleFunc("/vehicles", vehicleHandler.List).Methods("GET")
	authed.HandleFunc("/vehicles/{id}", vehicleHandler.Get).Methods("GET")
	authed.HandleFunc("/vehicles/{id}", vehicleHandler.Update).Methods("PUT")
	authed.HandleFunc("/vehicles/{id}", vehicleHandler.Delete).Methods("DELETE")

	authed.HandleFunc("/bookings", bookingHandler.Create).Methods("POST")
	authed.HandleFunc("/bookings", bookingHandler.List).Methods("GET")
	authed.HandleFunc("/bookings/{id}", bookingHandler.Get).Methods("GET")
	authed.HandleFunc("/bookings/{id}/status", bookingHandler.UpdateStatus).Methods("PUT")
	authed.HandleFunc("/bookings/{id}/cancel", bookingHandler.Cancel).Methods("POST")
	authed.HandleFunc("/bookings/{id}/history", bookingHandler.StatusHistory).Methods("GET")
	authed.HandleFunc("/bookings/{id}/feedback", bookingHandler.CreateFeedback).Methods("POST")
	authed.HandleFunc("/bookings/{id}/feedback", bookingHandler.GetFeedback).Methods("GET")
	authed.HandleFunc("/bookings/{id}/invoice", invoiceHandler.GetByBooking).Methods("GET")

	authed.HandleFunc("/invoices", invoiceHandler.List).Methods("GET")
	authed.HandleFunc("/invoices/{id}", invoiceHandler.Get).Methods("GET")
	authed.HandleFunc("/invoices/{id}/pay", invoiceHandler.Pay).Methods("POST")

	authed.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	authed.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("PUT")

	// Service center endpoints
	center := authed.PathPrefix("/center").Subrouter()
	center.Use(auth.RequireRole(db.RoleServiceCenter))
	center.HandleFunc("/profile", centerHandler.CreateProfile).Methods("POST")
	center.HandleFunc("/profile", centerHandler.GetProfile).Methods("GET")
	center.HandleFunc("/profile", centerHandler.UpdateProfile).Methods("PUT")
	center.HandleFunc("/services", centerHandler.CreateService).Methods("POST")
	center.HandleFunc("/services", centerHandler.ListServices).Methods("GET")
	center.HandleFunc("/services/{id}", centerHandler.UpdateService).Methods("PUT")
	center.HandleFunc("/mechanics", centerHandler.CreateMechanic).Methods("POST")
	center.HandleFunc("/mechanics", centerHandler.ListMechanics).Methods("GET")
	center.HandleFunc("/mechanics/{id}", centerHandler.UpdateMechanic).Methods("PUT")
	center.HandleFunc("/bookings/{id}/mechanic", bookingHandler.AssignMechanic).Methods("PUT")
	center.HandleFunc("/bookings/{id}/invoice", invoiceHandler.Generate).Methods("POST")
	center.HandleFunc("/invoices/{id}/payments", invoiceHandler.RecordPayment).Methods("POST")
	center.HandleFunc("/parts", inventoryHandler.CreatePart).Methods("POST")
	center.HandleFunc("/parts", inventoryHandler.ListParts).Methods("GET")
	center.HandleFunc("/parts/{id}", inventoryHandler.GetPart).Methods("GET")
	center.HandleFunc("/parts/{id}", inventoryHandler.UpdatePart).Methods("PUT")
	center.HandleFunc("/parts/{id}/transactions", inventoryHandler.RecordTransaction).Methods("POST")
	center.HandleFunc("/parts/{id}/transactions", inventoryHandler.ListTransactions).Methods("GET")
	center.HandleFunc("/dashboard", centerHandler.Dashboard).Methods("GET")
	center.HandleFunc("/analytics", centerHandler.GetAnalytics).Methods("GET")

	// Admin endpoints
	admin := authed.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireRole(db.RoleAdmin))
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/centers", adminHandler.ListCenters).Methods("GET")
	admin.HandleFunc("/centers/{id}/active", adminHandler.SetCenterActive).Methods("PUT")
	admin.HandleFunc("/categories", adminHandler.CreateCategory).Methods("POST")
	admin.HandleFunc("/categories", adminHandler.ListCategories).Methods("GET")
	admin.HandleFunc("/categories/{id}", adminHandler.UpdateCategory).Methods("PUT")
	admin.HandleFunc("/invoices", adminHandler.ListInvoices).Methods("GET")

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(r)))
}
