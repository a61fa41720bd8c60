package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"FinAgent/internal/di"
	"FinAgent/internal/domain/models"
	"FinAgent/internal/handler/api"
	"FinAgent/pkg/config"
	"FinAgent/pkg/util"
)

// Loader builds the use cases from a config path.
type Loader func(configPath, logLevel string) (*di.UseCases, error)

// DefaultLoader loads config with env overrides and wires the use cases.
func DefaultLoader(configPath, logLevel string) (*di.UseCases, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return di.InitializeUseCases(cfg)
}

// NewRootCmd creates the root command.
func NewRootCmd(load Loader) *cobra.Command {
	var (
		configPath string
		logLevel   string
		timeout    time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "finagent",
		Short: "FinAgent - market dashboard and news from the command line",
		Long: `FinAgent assembles the same dashboard, market movers and news the HTTP API serves
and prints them as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level override")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Overall command timeout")

	env := func(cmd *cobra.Command) (context.Context, context.CancelFunc, *di.UseCases, error) {
		uc, err := load(configPath, logLevel)
		if err != nil {
			return nil, nil, nil, err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		return ctx, cancel, uc, nil
	}

	rootCmd.AddCommand(newDashboardCmd(env))
	rootCmd.AddCommand(newMoversCmd(env))
	rootCmd.AddCommand(newNewsCmd(env))
	rootCmd.AddCommand(newAnalyzeCmd(env))
	return rootCmd
}

type envFunc func(cmd *cobra.Command) (context.Context, context.CancelFunc, *di.UseCases, error)

func newDashboardCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [TICKER]",
		Short: "Assemble the dashboard for a ticker (default from config)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticker := ""
			if len(args) == 1 {
				ticker = args[0]
			}
			ctx, cancel, uc, err := env(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			snap, err := uc.Dashboard.Assemble(ctx, ticker)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), api.NewDashboardResponse(snap))
		},
	}
}

type moverDTO struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
}

type moversOutput struct {
	Indices  map[string]float64     `json:"indices"`
	Trending []moverDTO             `json:"trending"`
	Gainers  []moverDTO             `json:"gainers"`
	Losers   []moverDTO             `json:"losers"`
	Failures []models.SymbolFailure `json:"failures,omitempty"`
}

func toMoverDTOs(ms []models.ChangeMetric) []moverDTO {
	out := make([]moverDTO, 0, len(ms))
	for _, m := range ms {
		out = append(out, moverDTO{Ticker: m.Symbol, Price: util.Round2(m.LatestPrice), ChangePercent: util.Round2(m.ChangePercent)})
	}
	return out
}

func newMoversCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "movers",
		Short: "Show index changes and trending gainers/losers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, uc, err := env(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			mv := uc.Movers.Collect(ctx)
			out := moversOutput{
				Indices:  make(map[string]float64, len(mv.Indices)),
				Trending: toMoverDTOs(mv.Trending),
				Gainers:  toMoverDTOs(mv.Gainers),
				Losers:   toMoverDTOs(mv.Losers),
				Failures: mv.Failures,
			}
			for _, ix := range mv.Indices {
				out.Indices[ix.Name] = util.Round2(ix.ChangePercent)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newNewsCmd(env envFunc) *cobra.Command {
	var (
		region string
		ticker string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Fetch latest market news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := models.ParseRegion(region)
			if err != nil {
				return err
			}
			if limit < 1 || limit > 50 {
				return fmt.Errorf("limit must be between 1 and 50, got %d", limit)
			}
			ctx, cancel, uc, err := env(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			res := uc.News.Get(ctx, models.NewsQuery{Region: r, Ticker: ticker, Limit: limit})
			return printJSON(cmd.OutOrStdout(), api.NewNewsResponse(res))
		},
	}
	cmd.Flags().StringVar(&region, "region", "GLOBAL", "Region: US, INDIA or GLOBAL")
	cmd.Flags().StringVar(&ticker, "ticker", "", "Optional ticker filter")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum items (1-50)")
	return cmd
}

func newAnalyzeCmd(env envFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze QUERY...",
		Short: "Ask the market analyst agent a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, uc, err := env(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			query := strings.Join(args, " ")
			answer, err := uc.Analyze.Analyze(ctx, query)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
