package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opsforge/sage/pkg/config"
	"github.com/opsforge/sage/pkg/headless"
	"github.com/opsforge/sage/pkg/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Operational intelligence chat client",
	Long:  `Chat with operational intelligence agents from the terminal, streaming responses token by token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Reload(); err != nil {
			return err
		}
		if err := logger.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}

		prompt := viper.GetString("prompt")
		if prompt == "" {
			return fmt.Errorf("a prompt is required (use --prompt)")
		}

		return headless.RunHeadless(
			context.Background(),
			viper.GetString("agent.default"),
			viper.GetString("session"),
			prompt,
			viper.GetBool("continue"),
		)
	},
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.sage/settings.yaml)")

	rootCmd.PersistentFlags().StringP("server", "s", "", "service base URL")
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().StringP("prompt", "p", "", "prompt to send to the agent")
	viper.BindPFlag("prompt", rootCmd.Flags().Lookup("prompt"))

	rootCmd.Flags().StringP("agent", "a", "", "agent id to chat with")
	viper.BindPFlag("agent.default", rootCmd.Flags().Lookup("agent"))

	rootCmd.Flags().String("session", "", "session id to continue (a new one is created when empty)")
	viper.BindPFlag("session", rootCmd.Flags().Lookup("session"))

	rootCmd.Flags().Bool("continue", false, "continue from previous chat history instead of starting fresh")
	viper.BindPFlag("continue", rootCmd.Flags().Lookup("continue"))

	config.InitializeDefaults()
}

func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}
