package main

import (
	"fmt"
	"log"
	"os"
	"wxhm/internal/di"
	"wxhm/internal/structures"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using config file and environment only")
	}

	flags := &structures.CliFlags{}

	rootCmd := &cobra.Command{
		Use:           "wxhmd",
		Short:         "wxHm group QR code server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cleanup, err := di.InitApp(flags)
			if cleanup != nil {
				defer cleanup()
			}
			return err
		},
	}
	rootCmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "config file path")
	rootCmd.Flags().BoolVarP(&flags.DebugMode, "debug", "d", false, "debug mode, also logs to the console")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
