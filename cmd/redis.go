package cmd

import (
	"context"
	"errors"
	"fmt"

	"VibeWake/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Long:  `Connect to Redis and print the last mirrored session snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		if !cfg.RedisEnabled() {
			return errors.New("REDIS_HOST is not set")
		}
		ctx := context.Background()
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		fmt.Println("Connected.")

		st, err := cache.LoadSession(ctx, client)
		if err != nil {
			return err
		}
		if st == nil {
			fmt.Println("No session snapshot stored yet.")
			return nil
		}
		fmt.Printf("Session: mode=%s greeting=%q\n", st.Mode, st.Greeting)
		if st.ActiveAlarm != nil {
			fmt.Printf("Ringing: %s %s\n", st.ActiveAlarm.Time, st.ActiveAlarm.Label)
		}
		if st.Snooze != nil {
			fmt.Printf("Snoozed until %s\n", st.Snooze.Until.Format("15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
