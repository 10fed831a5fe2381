package main

import (
	"time"

	"appraise-go/internal/config"
	"appraise-go/internal/database"
	"appraise-go/internal/logging"
	"appraise-go/internal/router"
	"appraise-go/internal/service"
	"appraise-go/internal/services"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger so config load failures are visible; replaced with
	// the configured logger right after.
	log, err := logging.Init(config.LoggingConfig{Directory: "logs", MaxSize: 10, MaxBackups: 3, MaxAge: 7})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	cfg, err := config.Load(".", log)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err = logging.Init(cfg.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	invitationTTL := time.Duration(cfg.Auth.InvitationTTLDays) * 24 * time.Hour
	magicLinkTTL := time.Duration(cfg.Auth.MagicLinkTTLHours) * time.Hour

	svc := router.Services{
		Types:         service.NewAssessmentTypeService(db, log),
		Categories:    service.NewCategoryService(db, log),
		Templates:     service.NewTemplateService(db, log),
		Questions:     service.NewQuestionService(db, log),
		Periods:       service.NewPeriodService(db, log),
		Users:         service.NewUserService(db, log),
		Instances:     service.NewInstanceService(db, log),
		Responses:     service.NewResponseService(db, log),
		Relationships: service.NewRelationshipService(db, log),
		Invitations:   service.NewInvitationService(db, log, invitationTTL),
		MagicLinks:    service.NewMagicLinkService(db, log, magicLinkTTL, cfg.Auth.MagicLinkRateLimit, []byte(cfg.Server.JWTSecret)),
		Email:         services.NewEmailService(log, cfg.Server.BaseURL),
	}

	scheduler := services.NewScheduler(log, svc.Invitations, svc.MagicLinks)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	r := router.Setup(log, cfg, svc)

	addr := ":" + cfg.Server.Port
	log.Info("Server listening on http://localhost" + addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
