package cmd

import (
	"fmt"
	"os"

	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     *models.Config
)

var rootCmd = &cobra.Command{
	Use:   "restosuite",
	Short: "Pawon Salam digital menu and restaurant HR services",
	Long: `restosuite runs the Pawon Salam guest menu (catalog, carts, waiter board and
admin panel) and the RestoHRIS employee management API, plus the tooling to
migrate, seed and export the HR database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if err := logger.InitLogger(loaded.Log.Level); err != nil {
			return fmt.Errorf("error initialising logger: %w", err)
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.GetLogger().Infow("using config file", "path", used)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./restosuite.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db-driver", "memory", "HR user store (memory or postgres)")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))
}

func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
