package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sturner103/letter-to-you/api"
	"github.com/sturner103/letter-to-you/auth"
	"github.com/sturner103/letter-to-you/config"
	"github.com/sturner103/letter-to-you/email"
	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/letters"
	"github.com/sturner103/letter-to-you/llm"
	"github.com/sturner103/letter-to-you/payments"
	"github.com/sturner103/letter-to-you/store"
)

// purgeExpiredBackups clears session backups past their TTL on an interval,
// so unconsumed credential pairs do not outlive their restore window.
func purgeExpiredBackups(st *store.Store, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := st.DeleteExpiredBackups(); err != nil {
				log.Printf("Session backup cleanup failed: %v", err)
			}
		case <-stop:
			return
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	st, err := store.New()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()
	log.Printf("Database ready: %s", st.ConnectionInfo())

	generator, err := llm.NewLemurClient()
	if err != nil {
		log.Fatalf("Failed to initialize text generation client: %v", err)
	}

	emailClient, err := email.NewClient()
	if err != nil {
		log.Printf("Email disabled: %v", err)
		emailClient = nil
	}

	authSvc := auth.NewService(st, config.JWTSecret,
		config.AccessTokenTTL, config.RefreshTokenTTL, config.SignOutTimeout)
	gate := payments.NewGate(st, config.StripeSecretKey, config.StripeWebhookSecret,
		config.StripePriceID, config.SiteURL, config.PaymentsDisabled,
		config.VerifyRetryAttempts, config.VerifyRetryDelay)
	orchestrator := letters.NewOrchestrator(st, generator)
	letterCache := letters.NewListCache(st, config.LetterCacheTTL)
	sessions := interview.NewRegistry(config.InterviewTTL)

	stop := make(chan struct{})
	defer close(stop)
	sessions.StartCleanup(config.InterviewTTL/4, stop)
	go purgeExpiredBackups(st, config.SessionBackupTTL, stop)

	var sweeper *email.Sweeper
	if emailClient != nil {
		sweeper = email.NewSweeper(st, emailClient, config.SweepBatchSize)
		go sweeper.Run(config.SweepInterval, stop)
	}

	r := gin.New()
	r.Use(api.FilteredLogger(), gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			config.SiteURL,
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))

	// Wrong method on a known path is a 405, not a 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	server := api.NewServer(st, authSvc, gate, orchestrator, letterCache,
		sessions, emailClient, sweeper)
	server.Routes(r)

	log.Printf("Listening on :%s", config.Port)
	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
