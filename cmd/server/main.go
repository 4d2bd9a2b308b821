package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prepflow/possync/internal/db"
	"prepflow/possync/internal/logging"
	"prepflow/possync/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("PrepFlow POS sync starting up",
		"environment", appEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// Connect to DB with sqlx
	if err := db.InitPostgres(); err != nil {
		logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
	}
	logging.Info("Connected to Postgres (sqlx)")

	// Connect to DB with GORM
	host := os.Getenv("PG_HOST")
	port := os.Getenv("PG_PORT")
	user := os.Getenv("PG_USER")
	dbname := os.Getenv("PG_DB")
	password := os.Getenv("PG_PASSWORD")
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbname)

	if _, err := db.InitPostgresORM(dsn); err != nil {
		logging.Error("Failed to connect to Postgres (GORM)", "error", err.Error())
		log.Fatalf("Failed to connect to Postgres (GORM): %v", err)
	}
	logging.Info("Connected to Postgres (GORM)")

	upSince := time.Now()

	router := routes.RegisterRoutes(upSince)

	// Metrics endpoint stays outside the Chi router so it skips auth and
	// rate limiting
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	logging.Info("Server starting",
		"port", httpPort,
		"environment", appEnv,
	)

	log.Printf("Starting server on :%s", httpPort)
	log.Fatal(http.ListenAndServe(":"+httpPort, mux))
}
