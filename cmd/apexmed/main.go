package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/UkralStul/apexmed-interactions/internal/app"
	"github.com/UkralStul/apexmed-interactions/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp читает конфигурацию и собирает приложение. Вызывающий обязан сделать defer a.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	// Флаги перекрывают пользователя из конфигурации
	if id, _ := cmd.Flags().GetString("user"); id != "" {
		cfg.User.ID = id
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		cfg.User.Name = name
	}

	a, err := app.New(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, errors.Wrap(err, "initializing app")
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "apexmed",
	Short:        "Comments, likes and view counters for ApexMed videos",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config.yml (default: search ./config, ../config, .)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Signed-in user id (overrides user.id)")
	rootCmd.PersistentFlags().String("name", "", "Signed-in user display name (overrides user.name)")

	// comments subcommands
	commentsCmd.AddCommand(commentsListCmd)
	commentsListCmd.Flags().StringP("order", "o", "newest", "Sort order: newest or oldest")
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsLikeCmd)
	commentsCmd.AddCommand(commentsWatchCmd)
	commentsWatchCmd.Flags().StringP("order", "o", "newest", "Sort order: newest or oldest")
	commentsCmd.AddCommand(commentsSeedCmd)

	// video subcommands
	videoCmd.AddCommand(videoViewCmd)
	videoCmd.AddCommand(videoStatsCmd)
	for _, c := range flagCmds {
		videoCmd.AddCommand(c)
	}
	videoCmd.AddCommand(videoListCmd)

	// root commands
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(feedCmd)
}
