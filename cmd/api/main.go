package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/mbet-dev/mbet-adera-backend/internal/config"
	"github.com/mbet-dev/mbet-adera-backend/internal/db"
	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	srv := server.New(nil, os.Getenv("FIREBASE_PROJECT_ID"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	errCh := make(chan error, 1)

	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	// Connect the database in the background so the listener is up
	// before the (slow) Cloud SQL dial finishes.
	go func() {
		cfg, err := config.Load()
		if err != nil {
			log.Printf("config load error: %v", err)
			return
		}
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Printf("db connect error: %v", err)
			return
		}
		srv.SetDB(conn)
		if err := conn.AutoMigrate(&model.Address{}, &model.Parcel{}, &model.Transaction{}); err != nil {
			log.Printf("auto migrate error: %v", err)
		}
		if err := db.EnsureViews(conn); err != nil {
			log.Printf("ensure views error: %v", err)
		}
	}()

	if err := <-errCh; err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
