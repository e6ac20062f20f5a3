package cmd

import (
	"context"
	"fmt"

	"VibeWake/core/greeting"

	"github.com/spf13/cobra"
)

var greetLabel string

var greetCmd = &cobra.Command{
	Use:   "greet",
	Short: "Generate one morning greeting",
	Long:  `Ask the configured greeting provider for a greeting, exactly as a ringing alarm would.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		g, err := greeting.NewFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("[%s] %s\n", g.ProviderName(), g.Greet(ctx, greetLabel))
		return nil
	},
}

func init() {
	greetCmd.Flags().StringVar(&greetLabel, "label", "", "alarm label to greet for")
	rootCmd.AddCommand(greetCmd)
}
