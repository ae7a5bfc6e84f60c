package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bizpulse/bizdash/internal"
	"github.com/bizpulse/bizdash/internal/api"
	"github.com/bizpulse/bizdash/internal/authz"
	"github.com/bizpulse/bizdash/internal/dashboard"
	"github.com/bizpulse/bizdash/internal/session"
	"github.com/bizpulse/bizdash/pkg/logger"
)

var (
	loginEmail    string
	loginPassword string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Sign in and print the dashboard aggregate",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	dashboardCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	dashboardCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (or BIZDASH_PASSWORD)")
	chatCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	chatCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (or BIZDASH_PASSWORD)")
}

// signIn performs the login exchange and installs the principal into a
// fresh session store, returning the store and the shared transport.
func signIn(cfg *internal.Config) (*session.Store, *api.Client, error) {
	if loginPassword == "" {
		loginPassword = os.Getenv("BIZDASH_PASSWORD")
	}
	if loginEmail == "" || loginPassword == "" {
		return nil, nil, fmt.Errorf("email and password are required")
	}

	store := session.NewStore()
	client := api.NewClient(cfg.API.BaseURL, store, logger.L())

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	defer cancel()

	resp, err := api.NewAuthClient(client).Login(ctx, loginEmail, loginPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("login failed: %w", err)
	}

	store.Set(resp.Principal())
	return store, client, nil
}

func runDashboard() error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}

	store, client, err := signIn(cfg)
	if err != nil {
		return err
	}

	principal, _ := store.Current()
	nav := authz.NewNavigator(store, authz.DefaultRoutes(), logger.L())
	if decision := nav.Decide(authz.RouteDashboard); decision != authz.DecisionAllow {
		return fmt.Errorf("dashboard screen not available: %s", decision)
	}

	agg := dashboard.NewAggregator(
		api.NewAdminClient(client),
		api.NewAuthClient(client),
		store,
		logger.L(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.RequestTimeout)
	defer cancel()

	model, source := agg.Load(ctx)

	fmt.Printf("Signed in as %s (%s)\n", principal.Identity, principal.Role)
	fmt.Printf("Dashboard source: %s\n\n", source)

	if model.IsZero() {
		fmt.Println("No dashboard data available.")
		return nil
	}

	names := make([]string, 0, len(model.KPIs))
	for name := range model.KPIs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-24s %12.2f\n", name, model.KPI(name))
	}

	if len(model.InventoryAlerts) > 0 {
		fmt.Println("\nLow stock:")
		for _, a := range model.InventoryAlerts {
			fmt.Printf("  %-32s stock %d (reorder at %d)\n", a.Name, a.Stock, a.ReorderLevel)
		}
	}

	if len(model.RecentOrders) > 0 {
		fmt.Println("\nRecent orders:")
		for _, o := range model.RecentOrders {
			fmt.Printf("  #%-6d %-24s %10.2f  %s\n", o.ID, o.Customer, o.Total, o.Status)
		}
	}

	return nil
}
