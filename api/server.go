// Package api provides HTTP handlers and middleware.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sturner103/letter-to-you/auth"
	"github.com/sturner103/letter-to-you/email"
	"github.com/sturner103/letter-to-you/interview"
	"github.com/sturner103/letter-to-you/letters"
	"github.com/sturner103/letter-to-you/payments"
	"github.com/sturner103/letter-to-you/store"
)

// Server wires the handlers to the services they orchestrate.
type Server struct {
	store        *store.Store
	auth         *auth.Service
	gate         *payments.Gate
	orchestrator *letters.Orchestrator
	letterCache  *letters.ListCache
	sessions     *interview.Registry
	emailClient  *email.Client
	sweeper      *email.Sweeper
}

func NewServer(st *store.Store, authSvc *auth.Service, gate *payments.Gate,
	orch *letters.Orchestrator, cache *letters.ListCache,
	sessions *interview.Registry, emailClient *email.Client,
	sweeper *email.Sweeper) *Server {
	return &Server{
		store:        st,
		auth:         authSvc,
		gate:         gate,
		orchestrator: orch,
		letterCache:  cache,
		sessions:     sessions,
		emailClient:  emailClient,
		sweeper:      sweeper,
	}
}

// Routes registers every endpoint on the engine.
func (s *Server) Routes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", s.SignUpHandler)
		authGroup.POST("/signin", s.SignInHandler)
		authGroup.POST("/magic-link", s.MagicLinkHandler)
		authGroup.POST("/magic-link/consume", s.ConsumeMagicLinkHandler)
		authGroup.POST("/oauth", s.OAuthHandler)
		authGroup.POST("/refresh", s.RefreshHandler)
		authGroup.POST("/signout", s.RequireAuth, s.SignOutHandler)
		authGroup.GET("/profile", s.RequireAuth, s.ProfileHandler)
	}

	interviews := v1.Group("/interviews", s.RequireAuthOrCheckoutCookie)
	{
		interviews.POST("", s.StartInterviewHandler)
		interviews.GET("/:id", s.InterviewSnapshotHandler)
		interviews.POST("/:id/answer", s.AnswerHandler)
		interviews.POST("/:id/followup", s.FollowUpHandler)
		interviews.POST("/:id/tone", s.ToneHandler)
		interviews.POST("/:id/next", s.NextHandler)
		interviews.POST("/:id/prev", s.PrevHandler)
		interviews.POST("/:id/skip", s.SkipHandler)
		interviews.POST("/:id/jump", s.JumpHandler)
		interviews.POST("/:id/reset", s.ResetHandler)
	}

	checkout := v1.Group("/checkout", s.RequireAuthOrCheckoutCookie)
	{
		checkout.POST("/session", s.CreateCheckoutHandler)
		checkout.POST("/verify", s.VerifyCheckoutHandler)
	}
	v1.GET("/purchases", s.RequireAuth, s.ListPurchasesHandler)
	v1.POST("/purchases/used", s.RequireAuth, s.MarkPurchaseUsedHandler)
	v1.POST("/webhooks/stripe", s.StripeWebhookHandler)

	lettersGroup := v1.Group("/letters", s.RequireAuth)
	{
		lettersGroup.POST("/generate", s.GenerateLetterHandler)
		lettersGroup.GET("", s.ListLettersHandler)
		lettersGroup.GET("/:id", s.GetLetterHandler)
		lettersGroup.DELETE("/:id", s.DeleteLetterHandler)
		lettersGroup.POST("/compare", s.CompareLettersHandler)
		lettersGroup.POST("/email", s.EmailLetterHandler)
	}

	session := v1.Group("/session")
	{
		session.POST("/store", s.RequireAuth, s.StoreSessionHandler)
		session.GET("/restore", s.RestoreSessionHandler)
		session.POST("/checkout-cookie", s.RequireAuth, s.CheckoutCookieHandler)
	}

	v1.POST("/emails/send-scheduled", s.SendScheduledHandler)

	checkins := v1.Group("/checkins", s.RequireAuth)
	{
		checkins.POST("", s.CreateCheckinHandler)
		checkins.GET("", s.ListCheckinsHandler)
	}

	v1.GET("/modes", s.ListModesHandler)
	v1.GET("/crisis-resources", s.CrisisResourcesHandler)
}
