// pointsdash is a terminal client for the rewards dashboard. Each subcommand
// drives one panel: it loads or submits against the configured backend and
// prints the result.
//
// Usage:
//
//	pointsdash login <token>                  Store a session token
//	pointsdash logout                         Clear the stored token
//	pointsdash profile                        Show the account profile
//	pointsdash surveys                        List available surveys
//	pointsdash rates                          Show redemption rates
//	pointsdash redeem -type t -amount n -dest d   Redeem points
//	pointsdash transfer -to email -amount n   Transfer points
//	pointsdash history [-start d] [-end d] [-limit n]   Show redemption history
//	pointsdash change-password                Change the account password
//	pointsdash change-pin                     Change the account PIN
//
// Configuration comes from ~/.pointsdash/config.yaml, overridable with
// POINTSDASH_API_URL and POINTSDASH_TOKEN.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/pointsdash/pointsdash/internal/api"
	"github.com/pointsdash/pointsdash/internal/config"
	"github.com/pointsdash/pointsdash/internal/notify"
	"github.com/pointsdash/pointsdash/internal/panel"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "help" || os.Args[1] == "--help" || os.Args[1] == "-h" {
		printUsage()
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		return
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fatalf("loading config: %v", err)
	}

	switch cmd {
	case "login":
		runLogin(cfg, args)
		return
	case "logout":
		cfg.Token = ""
		if err := config.Save(cfg); err != nil {
			fatalf("saving config: %v", err)
		}
		fmt.Println("Logged out.")
		return
	}

	client := api.NewClient(cfg.BaseURL, api.NewSession(cfg.Token))
	notifier := &consoleNotifier{}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "profile":
		runProfile(ctx, client, notifier)
	case "surveys":
		runSurveys(ctx, client, notifier)
	case "rates":
		runRates(ctx, client, notifier)
	case "redeem":
		runRedeem(ctx, client, notifier, args)
	case "transfer":
		runTransfer(ctx, client, notifier, args)
	case "history":
		runHistory(ctx, client, notifier, args)
	case "change-password":
		runChangePassword(ctx, client, notifier)
	case "change-pin":
		runChangePIN(ctx, client, notifier)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: pointsdash <command> [flags]

Commands:
  login <token>     Store a session token
  logout            Clear the stored token
  profile           Show the account profile
  surveys           List available surveys
  rates             Show redemption rates
  redeem            Redeem points (-type, -amount, -dest)
  transfer          Transfer points (-to, -amount)
  history           Show redemption history (-start, -end, -limit)
  change-password   Change the account password
  change-pin        Change the account PIN
`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// consoleNotifier renders notifications on the terminal, the closest
// equivalent of the dashboard's toast stack.
type consoleNotifier struct{}

func (c *consoleNotifier) Notify(n notify.Notification) {
	prefix := "*"
	switch n.Severity {
	case notify.SeveritySuccess:
		prefix = "✓"
	case notify.SeverityDestructive:
		prefix = "✗"
	}
	fmt.Fprintf(os.Stderr, "%s %s: %s\n", prefix, n.Title, n.Description)
}

func runLogin(cfg *config.Config, args []string) {
	if len(args) != 1 {
		fatalf("usage: pointsdash login <token>")
	}
	cfg.Token = args[0]
	if err := config.Save(cfg); err != nil {
		fatalf("saving config: %v", err)
	}
	fmt.Println("Token stored.")
}

func runProfile(ctx context.Context, client *api.Client, notifier notify.Notifier) {
	p := panel.NewProfilePanel(client, notifier)
	if err := p.Load(ctx); err != nil {
		os.Exit(1)
	}
	u := p.User()
	fmt.Printf("%-16s %s\n", "Email:", u.Email)
	if u.Name != "" {
		fmt.Printf("%-16s %s\n", "Name:", u.Name)
	}
	fmt.Printf("%-16s %s\n", "Status:", u.Status)
	fmt.Printf("%-16s %d\n", "Points:", u.PointsBalance)
	if u.ReferralCode != "" {
		fmt.Printf("%-16s %s\n", "Referral code:", u.ReferralCode)
	}
	fmt.Printf("%-16s %v\n", "Email verified:", u.EmailVerified)
}

func runSurveys(ctx context.Context, client *api.Client, notifier notify.Notifier) {
	p := panel.NewSurveysPanel(client, notifier)
	if err := p.Load(ctx); err != nil {
		os.Exit(1)
	}
	surveys := p.Surveys()
	if len(surveys) == 0 {
		fmt.Println("No surveys available right now.")
		return
	}
	for _, s := range surveys {
		fmt.Printf("%s  %-28s %5d pts", s.ID, s.Title, s.Reward)
		if s.Description != "" {
			fmt.Printf("  %s", s.Description)
		}
		fmt.Println()
	}
}

func runRates(ctx context.Context, client *api.Client, notifier notify.Notifier) {
	p := panel.NewRedeemPanel(client, notifier)
	if err := p.Load(ctx); err != nil {
		os.Exit(1)
	}
	fmt.Printf("Bitcoin:   %s\n", p.BitcoinRateLabel())
	fmt.Printf("Gift card: %s\n", p.GiftCardRateLabel())
}

func runRedeem(ctx context.Context, client *api.Client, notifier notify.Notifier, args []string) {
	fs := flag.NewFlagSet("redeem", flag.ExitOnError)
	typ := fs.String("type", "bitcoin", "redemption type: bitcoin or gift_card")
	amount := fs.String("amount", "", "points to redeem")
	dest := fs.String("dest", "", "wallet address or gift card email")
	fs.Parse(args)

	p := panel.NewRedeemPanel(client, notifier)
	p.Type = *typ
	p.Amount = *amount
	p.Destination = *dest
	if err := p.Submit(ctx); err != nil {
		os.Exit(1)
	}
}

func runTransfer(ctx context.Context, client *api.Client, notifier notify.Notifier, args []string) {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	to := fs.String("to", "", "recipient email")
	amount := fs.String("amount", "", "points to transfer")
	fs.Parse(args)

	p := panel.NewTransferPanel(client, notifier)
	p.ReceiverEmail = *to
	p.Amount = *amount
	if err := p.Submit(ctx); err != nil {
		os.Exit(1)
	}
}

func runHistory(ctx context.Context, client *api.Client, notifier notify.Notifier, args []string) {
	p := panel.NewHistoryPanel(client, notifier)

	fs := flag.NewFlagSet("history", flag.ExitOnError)
	fs.StringVar(&p.StartDate, "start", p.StartDate, "start date (YYYY-MM-DD)")
	fs.StringVar(&p.EndDate, "end", p.EndDate, "end date (YYYY-MM-DD)")
	fs.IntVar(&p.Limit, "limit", p.Limit, "maximum results")
	fs.Parse(args)

	if err := p.Load(ctx); err != nil {
		os.Exit(1)
	}
	items := p.History()
	if len(items) == 0 {
		fmt.Println("No redemptions in this range.")
		return
	}
	for _, r := range items {
		fmt.Printf("%s  %-10s %6d pts  $%.2f  %s\n",
			r.CreatedAt, r.Type, r.PointsAmount, r.EquivalentValue, r.Status)
	}
}

func runChangePassword(ctx context.Context, client *api.Client, notifier notify.Notifier) {
	p := panel.NewChangePasswordPanel(client, notifier)
	p.CurrentPassword = promptSecret("Current password: ")
	p.NewPassword = promptSecret("New password: ")
	p.ConfirmNewPassword = promptSecret("Confirm new password: ")
	if err := p.Submit(ctx); err != nil {
		os.Exit(1)
	}
}

func runChangePIN(ctx context.Context, client *api.Client, notifier notify.Notifier) {
	p := panel.NewChangePINPanel(client, notifier)
	p.CurrentPIN = promptSecret("Current PIN: ")
	p.NewPIN = promptSecret("New PIN: ")
	if err := p.Submit(ctx); err != nil {
		os.Exit(1)
	}
}

func promptSecret(label string) string {
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fatalf("reading input: %v", err)
	}
	return string(b)
}
