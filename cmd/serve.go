package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobstir/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evaluation HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := setup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApplication(ctx, config, logger)
		if err != nil {
			logger.Fatal("building the evaluator", zap.Error(err))
		}
		defer a.close()

		if !viper.GetBool("debug") {
			gin.SetMode(gin.ReleaseMode)
		}

		if err := server.New(config.Server, a.evaluator, logger).Run(ctx); err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}
