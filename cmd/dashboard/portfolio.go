package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/utils"
)

var (
	portfolioUserID  int64
	portfolioTimeout time.Duration

	portfolioCmd = &cobra.Command{
		Use:   "portfolio",
		Short: "Print a user's portfolio once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, portfolioTimeout)
			defer cancel()

			app, err := buildApplication(ctx, cfg, zapLogger)
			if err != nil {
				return fmt.Errorf("wire application: %w", err)
			}
			defer app.Close()

			view, err := app.portfolio.GetPortfolio(ctx, portfolioUserID)
			if err != nil {
				return err
			}
			return printPortfolio(os.Stdout, view)
		},
	}
)

func init() {
	portfolioCmd.Flags().Int64Var(&portfolioUserID, "user", 0, "user id whose portfolio is printed")
	portfolioCmd.Flags().DurationVar(&portfolioTimeout, "timeout", time.Minute, "overall deadline")
	_ = portfolioCmd.MarkFlagRequired("user")
}

func printPortfolio(out io.Writer, view *entity.PortfolioView) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ASSET\tBALANCE\tPRICE\t24H\tVALUE\tSHARE\tWALLETS\n")
	for _, e := range view.Entries {
		price := "n/a"
		if e.PriceAvailable {
			price = utils.FormatUSD(e.Quote.PriceUSD)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			e.Asset.Symbol,
			utils.FormatBigInt(e.ConfirmedRaw, e.Asset.Decimals),
			price,
			utils.FormatPercent(e.Quote.Change24h),
			utils.FormatUSD(e.FiatValue),
			utils.FormatPercent(e.PortfolioPercent),
			e.WalletCount,
		)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t\t%s\t\t\n", utils.FormatUSD(view.TotalFiatValue))
	return w.Flush()
}
