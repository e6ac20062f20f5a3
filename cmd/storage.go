package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check the blob store used for imports",
	Long:  `Write and delete a probe object in MinIO, or in UPLOAD_DIR when MinIO is not configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		blobs, _, err := openBlobStore(ctx, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Blob store: %s\n", blobs.Name())

		content := "vibewake storage probe " + time.Now().Format(time.RFC3339)
		key := "probe/connection.txt"
		url, err := blobs.Put(ctx, key, strings.NewReader(content), int64(len(content)), "text/plain")
		if err != nil {
			return fmt.Errorf("write probe: %w", err)
		}
		fmt.Printf("Probe written: %s\n", url)
		if err := blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete probe: %w", err)
		}
		fmt.Println("Probe deleted. Storage OK.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)
}
