package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/format"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Per-video flags and counters",
}

var videoViewCmd = &cobra.Command{
	Use:   "view <video-id>",
	Short: "Count a view once per session and print the total",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		views, err := a.Interactions.IncrementViewOnce(cmd.Context(), args[0], a.Markers)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s visualizações\n", format.Count(views))
		return nil
	},
}

var videoStatsCmd = &cobra.Command{
	Use:   "stats <video-id>",
	Short: "Print views, likes and comment count of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		stats := a.Interactions.Stats(ctx, args[0])
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s visualizações\n", format.Count(stats.Views))
		fmt.Fprintf(out, "%s curtidas\n", format.Count(stats.Likes))
		fmt.Fprintf(out, "%d comentários\n", a.Comments.Count(ctx, args[0]))

		if userID := a.UserID(); userID != "" {
			for _, kind := range []domain.FlagKind{domain.FlagLiked, domain.FlagFavorited, domain.FlagSaved} {
				on, err := a.Interactions.Flag(ctx, args[0], userID, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %t\n", kind, on)
			}
		}
		return nil
	},
}

// flagCmd переключает отметку текущего пользователя.
func flagCmd(use string, kind domain.FlagKind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <video-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			userID := a.UserID()
			if userID == "" {
				return errors.New("sign in first: pass --user or set user.id")
			}
			on, err := a.Interactions.Toggle(cmd.Context(), args[0], userID, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", kind, on)
			return nil
		},
	}
}

var flagCmds = []*cobra.Command{
	flagCmd("like", domain.FlagLiked, "Toggle like on a video"),
	flagCmd("favorite", domain.FlagFavorited, "Toggle favorite on a video"),
	flagCmd("save", domain.FlagSaved, "Toggle saved-for-later on a video"),
}

var videoListCmd = &cobra.Command{
	Use:   "list <liked|favorited|saved>",
	Short: "List videos the signed-in user has flagged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		userID := a.UserID()
		if userID == "" {
			return errors.New("sign in first: pass --user or set user.id")
		}
		ids, err := a.Interactions.Members(cmd.Context(), userID, domain.FlagKind(args[0]))
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch the video catalog and print the feed with counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.Feed(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, item := range items {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s visualizações\t%d comentários\n",
				item.ID, item.Title, item.Duration, format.Count(item.Views), item.CommentCount)
		}
		return nil
	},
}
