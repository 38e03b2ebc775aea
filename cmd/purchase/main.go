package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"boostshop/internal/adapter/repo"
	"boostshop/internal/domain"
	"boostshop/internal/infra"
)

// purchase inspects the ledger: one session in detail, or the paid purchases
// still waiting for their credit.
func main() {
	var (
		sessionFlag    string
		uncreditedFlag int
	)
	flag.StringVar(&sessionFlag, "session", "", "checkout session id to inspect")
	flag.IntVar(&uncreditedFlag, "uncredited", 0, "list up to N paid purchases that were never credited")
	flag.Parse()

	_ = godotenv.Load()

	sessionID := strings.TrimSpace(sessionFlag)
	if sessionID == "" && uncreditedFlag <= 0 {
		exitWithError(errors.New("either -session or -uncredited must be provided"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "purchase").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	purchases := repo.NewPurchaseRepository(runner)
	profiles := repo.NewProfileRepository(runner)

	if sessionID != "" {
		p, err := purchases.GetBySessionID(ctx, sessionID)
		if err != nil {
			exitWithError(fmt.Errorf("failed to load purchase: %w", err))
		}
		printPurchase(os.Stdout, p)
		if prof, err := profiles.GetByUserID(ctx, p.UserID); err == nil {
			fmt.Printf("profile: current=%d purchased=%d tier=%s\n", prof.CurrentConnections, prof.TotalPurchasedConnections, prof.Tier())
		} else {
			fmt.Printf("profile: %v\n", err)
		}
	}

	if uncreditedFlag > 0 {
		list, err := purchases.ListUncredited(ctx, uncreditedFlag)
		if err != nil {
			exitWithError(fmt.Errorf("failed to list uncredited purchases: %w", err))
		}
		printUncredited(os.Stdout, list)
	}
}

func printPurchase(w io.Writer, p *domain.Purchase) {
	fmt.Fprintf(w, "session:     %s\n", p.SessionID)
	fmt.Fprintf(w, "purchase:    %s\n", p.ID)
	fmt.Fprintf(w, "user:        %s\n", p.UserID)
	fmt.Fprintf(w, "package:     %s (%d connections)\n", p.PackageType, p.Connections)
	fmt.Fprintf(w, "amount:      %s %s\n", p.Amount.StringFixed(2), p.Currency)
	fmt.Fprintf(w, "status:      %s\n", p.Status)
	fmt.Fprintf(w, "created_at:  %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "paid_at:     %s\n", formatTime(p.PaidAt))
	fmt.Fprintf(w, "credited_at: %s\n", formatTime(p.CreditedAt))
}

func printUncredited(w io.Writer, list []domain.Purchase) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no paid purchases awaiting credit")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tUSER\tCONNECTIONS\tPAID AT")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.SessionID, p.UserID, p.Connections, formatTime(p.PaidAt))
	}
	_ = tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
