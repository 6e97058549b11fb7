package main

import (
	"encoding/json"
	"fmt"
	"os"

	"domainintel/internal/config"
	"domainintel/internal/pricing"
	"domainintel/pkg/logger"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}

	return nil
}

// trustCommand constructs the 'trust' subcommand that prints the trust report
// of a URL or domain.
func trustCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust <url>",
		Short: "Prints the trust report of a URL or domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			meter := noop.NewMeterProvider().Meter("cli")

			reg, closeRegistry := getRegistry(ctx, cfg, meter)
			defer closeRegistry()

			report, err := getTrustEngine(ctx, cfg, meter, reg).Analyze(ctx, args[0])
			if err != nil {
				return fmt.Errorf("could not analyze %q: %w", args[0], err)
			}

			return printJSON(report)
		},
	}

	return cmd
}

// pricingCommand constructs the 'pricing' subcommand that prints the pricing
// report of a domain.
func pricingCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing <domain>",
		Short: "Prints indicative registration prices of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nd := pricing.Target(args[0])
			if nd.Hostname == "" {
				return fmt.Errorf("could not extract a domain from %q", args[0])
			}
			logger.Debug(ctx, "collecting offers", zap.String("domain", nd.Hostname))

			collector := getPricingCollector(ctx, cfg, noop.NewMeterProvider().Meter("cli"))

			return printJSON(collector.FetchOffers(ctx, nd))
		},
	}

	return cmd
}
