package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/goremit/internal/adapter/http/dto"
	"github.com/iho/goremit/internal/domain"
	"github.com/iho/goremit/internal/infrastructure/logger"
	"github.com/iho/goremit/internal/infrastructure/postgres"
)

func quoteCmd(opts *options) *cobra.Command {
	var inverse bool

	cmd := &cobra.Command{
		Use:   "quote FROM TO",
		Short: "Show the sell and buy rate for a currency pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("from", args[0])
			q.Set("to", args[1])
			q.Set("inverse", strconv.FormatBool(inverse))

			raw, err := newClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/rates/quote", q, nil)
			if err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().BoolVar(&inverse, "inverse", false, "Quote the pair in the inverse direction")
	return cmd
}

func priceCmd(opts *options) *cobra.Command {
	var (
		txType, direction string
		manualRate        string
	)

	cmd := &cobra.Command{
		Use:   "price AMOUNT FROM TO",
		Short: "Price a transaction without submitting it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			req := dto.PriceRequest{
				Amount:       amount,
				FromCurrency: domain.NormalizeCurrency(args[1]),
				ToCurrency:   domain.NormalizeCurrency(args[2]),
				Type:         domain.TransactionType(txType),
				Direction:    domain.Direction(direction),
			}
			if manualRate != "" {
				r, err := decimal.NewFromString(manualRate)
				if err != nil {
					return fmt.Errorf("invalid manual rate %q: %w", manualRate, err)
				}
				req.ManualRate = &r
			}

			raw, err := newClient(opts).call(cmd.Context(), http.MethodPost, "/api/v1/transactions/price", nil, req)
			if err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.Flags().StringVar(&txType, "type", string(domain.TransactionTransfer), "Transaction type")
	cmd.Flags().StringVar(&direction, "direction", string(domain.DirectionSend), "Amount direction (send or receive)")
	cmd.Flags().StringVar(&manualRate, "manual-rate", "", "Override the configured exchange rate")
	return cmd
}

func ledgerCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check that debits equal credits per currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, raw, err := newClient(opts).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch status {
			case http.StatusOK:
				fmt.Fprintln(out, "Consistency check PASSED")
				printJSON(out, raw)
				return nil
			case http.StatusConflict:
				fmt.Fprintln(out, "Consistency check FAILED")
				printJSON(out, raw)
				return errCheckFailed
			default:
				return apiError(status, raw)
			}
		},
	}

	consolidated := &cobra.Command{
		Use:   "consolidated",
		Short: "Show balances across every agency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := newClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/ledger/consolidated", nil, nil)
			if err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	agency := &cobra.Command{
		Use:   "agency ID",
		Short: "Show the ledger of one agency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := newClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/ledger/agencies/"+url.PathEscape(args[0]), nil, nil)
			if err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), raw)
			return nil
		},
	}

	cmd.AddCommand(consistency, consolidated, agency)
	return cmd
}

func reconciliationCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconciliation",
		Short: "Reconciliation operations",
	}

	var agencyID, agentID, currency, from, to string
	report := &cobra.Command{
		Use:   "report",
		Short: "Summarize reconciliation cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for key, v := range map[string]string{
				"agency_id": agencyID,
				"agent_id":  agentID,
				"currency":  currency,
				"from":      from,
				"to":        to,
			} {
				if v != "" {
					q.Set(key, v)
				}
			}

			raw, err := newClient(opts).call(cmd.Context(), http.MethodGet, "/api/v1/reconciliations/report", q, nil)
			if err != nil {
				return err
			}
			printJSON(cmd.OutOrStdout(), raw)
			return nil
		},
	}
	report.Flags().StringVar(&agencyID, "agency", "", "Agency ID")
	report.Flags().StringVar(&agentID, "agent", "", "Agent ID")
	report.Flags().StringVar(&currency, "currency", "", "Currency code")
	report.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD or RFC3339)")
	report.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD or RFC3339)")

	cmd.AddCommand(report)
	return cmd
}

func tokenCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token operations",
	}

	var name, agencyID string
	issue := &cobra.Command{
		Use:   "issue USER_ID ROLE",
		Short: "Request a token from a server with token issuing enabled",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseRole(args[1]); err != nil {
				return err
			}

			body := map[string]string{
				"user_id":   args[0],
				"role":      args[1],
				"name":      name,
				"agency_id": agencyID,
			}
			raw, err := newClient(opts).call(cmd.Context(), http.MethodPost, "/api/v1/auth/token", nil, body)
			if err != nil {
				return err
			}

			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	issue.Flags().StringVar(&name, "name", "", "Display name")
	issue.Flags().StringVar(&agencyID, "agency", "", "Agency the actor belongs to")

	cmd.AddCommand(issue)
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "migrations"), "Migrations directory")

	requireURL := func() error {
		if databaseURL == "" {
			return fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		return nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			return postgres.RunMigrations(databaseURL, path, cliLogger(cmd))
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			return postgres.RunMigrationsDown(databaseURL, path, cliLogger(cmd))
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireURL(); err != nil {
				return err
			}
			v, dirty, err := postgres.MigrationVersion(databaseURL, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	return logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
}
