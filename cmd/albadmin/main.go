package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/albamarket/alba/internal/config"
	"github.com/albamarket/alba/internal/database"
	"github.com/albamarket/alba/internal/models"
	"github.com/albamarket/alba/internal/repositories"
	"github.com/albamarket/alba/internal/services"
	"github.com/albamarket/alba/pkg/logger"
)

func main() {
	grantCmd := flag.Bool("grant", false, "grant ALBA to a user")
	gencodesCmd := flag.Bool("gencodes", false, "generate a batch of single-use codes")

	userID := flag.Uint("user", 0, "target user id")
	amount := flag.Int64("amount", 0, "ALBA amount to grant")
	reason := flag.String("reason", models.ReasonAdminGrant, "grant reason")
	actorID := flag.Uint("actor", 0, "admin user id performing the action")

	count := flag.Int("count", 1, "number of codes to generate")
	kind := flag.String("kind", models.CodeKindSlot, "code kind: slot or payment_activation")
	cardType := flag.String("type", models.CardTypeProduct, "card type: product, service or banner")
	expires := flag.String("expires", "", "optional expiry date, YYYY-MM-DD")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", err)
	}
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("production security validation failed", err)
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", err)
	}

	ledgerRepo := repositories.NewLedgerRepository(db)
	userRepo := repositories.NewUserRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	codeRepo := repositories.NewCodeRepository(db)
	cardRepo := repositories.NewCardRepository(db)

	ledgerSvc := services.NewLedgerService(ledgerRepo, userRepo, auditRepo, cfg)
	codeSvc := services.NewCodeService(codeRepo, cardRepo, auditRepo, cfg)

	switch {
	case *grantCmd:
		if *userID == 0 || *amount <= 0 || *actorID == 0 {
			log.Fatal("usage: albadmin -grant -user <id> -amount <n> -actor <admin id> [-reason <reason>]")
		}
		actor := *actorID
		user, err := ledgerSvc.GrantAlba(*userID, *amount, *reason, &actor)
		if err != nil {
			logger.Fatal("grant failed", err)
		}
		fmt.Printf("granted %d ALBA to user %d, new balance %d\n", *amount, user.ID, user.AlbaBalance)

	case *gencodesCmd:
		if *actorID == 0 {
			log.Fatal("usage: albadmin -gencodes -count <n> -kind <kind> -type <type> -actor <admin id> [-expires YYYY-MM-DD]")
		}
		var expiresAt *time.Time
		if *expires != "" {
			t, err := time.Parse("2006-01-02", *expires)
			if err != nil {
				logger.Fatal("invalid -expires date", err)
			}
			expiresAt = &t
		}
		codes, err := codeSvc.CreateCodes(*count, *kind, *cardType, expiresAt, *actorID)
		if err != nil {
			logger.Fatal("code generation failed", err)
		}
		for _, c := range codes {
			fmt.Println(c.Code)
		}

	default:
		flag.Usage()
	}
}
