package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "face-attendance",
	Short: "Real-time face attendance tracker",
	Long: `Face Attendance watches a camera, recognizes enrolled people and records
their attendance. A person seen again within the cooldown window is shown
but not recorded twice.

Faces are encoded by an InsightFace-compatible embedding server (EMBEDDING_URL).
Known people are images in the enrollment directory, named after the person.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file (environment variables still take precedence)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
