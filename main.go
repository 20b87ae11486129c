package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/CampusTrack/CT-Backend/internal/auth"
	"github.com/CampusTrack/CT-Backend/internal/db"
	"github.com/CampusTrack/CT-Backend/internal/middleware"
	"github.com/CampusTrack/CT-Backend/internal/notify"
	"github.com/CampusTrack/CT-Backend/internal/tracking"
	"github.com/CampusTrack/CT-Backend/internal/weather"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	tracking.Init()
	notify.Init()
	weather.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/tracking", tracking.SetupRoutes())
	r.Mount("/notifications", notify.SetupRoutes())
	r.Mount("/weather", weather.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
