package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/openkassa/kassaterm/internal/config"
	"github.com/openkassa/kassaterm/internal/http_api"
	"github.com/openkassa/kassaterm/internal/notificator"
	"github.com/openkassa/kassaterm/internal/provider"
	"github.com/openkassa/kassaterm/internal/rates"
	"github.com/openkassa/kassaterm/internal/repository"
	"github.com/openkassa/kassaterm/internal/terminal"
	"github.com/openkassa/kassaterm/internal/verify"
	"github.com/openkassa/kassaterm/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "kassaterm",
		Usage: "Kassaterm is a merchant payment-terminal backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "provider-base-url", Aliases: []string{"b"}, Usage: "Payment provider base URL"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "HTTP API port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("provider-base-url") {
		cfg.ProviderBaseURL = c.String("provider-base-url")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Initialize payment provider client and verifier
	providerClient := provider.NewClient(cfg.ProviderBaseURL, log)
	verifier := verify.NewVerifier(providerClient, cfg.CallbackURL, cfg.ReturnURL, log)

	// Initialize withdrawal relay channels
	var telegram *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telegram, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var email *notificator.EmailNotificator
	if cfg.SMTPUser != "" {
		email = notificator.NewEmailNotificator(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notifier := notificator.NewNotificator(log, telegram, email, cfg.WithdrawalEmail)

	// Initialize exchange-rate cache
	ratesService := rates.NewService(cfg.RatesURL, cfg.RatesRefreshInterval, log)
	ratesService.Start()

	// Create Terminal instance
	terminalApp := terminal.NewTerminal(db, providerClient, verifier, notifier, log, cfg)

	apiServer := http_api.NewHTTPServer(terminalApp, ratesService, cfg.APIPort, log)

	// Start the pending-payment poller
	terminalApp.Start()
	// Start the API server (blocks)
	apiServer.Start()

	return nil
}
