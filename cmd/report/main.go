package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"validity-service/internal/apierror"
	"validity-service/internal/client"
	"validity-service/internal/config"
	"validity-service/internal/logger"
	"validity-service/internal/models"
)

func main() {
	email := flag.String("email", os.Getenv("VALIDITY_EMAIL"), "email пользователя")
	password := flag.String("password", os.Getenv("VALIDITY_PASSWORD"), "пароль")
	device := flag.String("device", "report-cli", "ID устройства")
	teamID := flag.String("team", "", "ID команды, по умолчанию первая")
	days := flag.Int("days", -1, "порог близости к сроку в днях, по умолчанию настройка сервера")
	removeChecked := flag.Bool("remove-checked", false, "скрыть обработанные партии")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger := logger.New(cfg.Log)
	defer func() { _ = zapLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	messages, err := apierror.NewMessages(cfg.Client.Locale)
	if err != nil {
		zapLogger.Fatal("Failed to load messages", zap.Error(err))
	}

	sess := client.NewMemorySession()
	nav := client.NewLogNavigator(zapLogger)
	api := client.New(cfg.Client, sess, apierror.NewDispatcher(sess, nav, messages, zapLogger), zapLogger)

	query := models.ProductListQuery{RemoveChecked: *removeChecked}
	if *days >= 0 {
		query.NearExpiryDays = days
	}

	if err := run(ctx, api, sess, *email, *password, *device, *teamID, query); err != nil {
		var appErr *apierror.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintln(os.Stderr, appErr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		if route := nav.Route(); route != "" {
			zapLogger.Debug("session recovery", zap.String("route", route))
		}
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	api *client.Client,
	sess *client.MemorySession,
	email, password, device, teamID string,
	query models.ProductListQuery,
) error {
	token, err := api.Login(ctx, email, password, device)
	if err != nil {
		return err
	}
	sess.SignIn(token)

	teams, err := api.ListTeams(ctx)
	if err != nil {
		return err
	}
	team, err := pickTeam(teams, teamID)
	if err != nil {
		return err
	}
	sess.SelectTeam(client.Team{ID: team.ID, Name: team.Name, Role: team.Role})

	products, err := api.ListProducts(ctx, team.ID, query)
	if err != nil {
		return err
	}

	return printReport(os.Stdout, team, products)
}

func pickTeam(teams []models.UserTeam, teamID string) (models.UserTeam, error) {
	if len(teams) == 0 {
		return models.UserTeam{}, errors.New("user has no teams")
	}
	if teamID == "" {
		return teams[0], nil
	}
	for _, t := range teams {
		if t.ID == teamID {
			return t, nil
		}
	}
	return models.UserTeam{}, fmt.Errorf("team %s not found", teamID)
}

func printReport(out *os.File, team models.UserTeam, products []models.ProductResponse) error {
	fmt.Fprintf(out, "%s (%s)\n\n", team.Name, team.Role)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tBATCH\tEXPIRES\tSTATUS\tSTATE")
	for _, p := range products {
		if len(p.Batches) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\n", p.Name)
			continue
		}
		for _, b := range p.Batches {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.Name, b.Name, b.ExpirationDate.Format(time.DateOnly), b.Status, state(b))
		}
	}
	return w.Flush()
}

func state(b models.BatchResponse) string {
	switch {
	case b.Expired:
		return "expired"
	case b.NearToExpire:
		return "near"
	default:
		return "ok"
	}
}
