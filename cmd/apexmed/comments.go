package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/UkralStul/apexmed-interactions/internal/comments"
	"github.com/UkralStul/apexmed-interactions/internal/domain"
	"github.com/UkralStul/apexmed-interactions/internal/format"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and write video comments",
}

func parseOrder(cmd *cobra.Command) (domain.SortOrder, error) {
	order, _ := cmd.Flags().GetString("order")
	switch domain.SortOrder(order) {
	case domain.SortNewest, domain.SortOldest:
		return domain.SortOrder(order), nil
	}
	return "", errors.Errorf("unknown order %q: use newest or oldest", order)
}

func printComments(w io.Writer, list []*domain.Comment, userID string, now time.Time) {
	if len(list) == 0 {
		fmt.Fprintln(w, "Nenhum comentário ainda. Seja o primeiro a comentar!")
		return
	}
	fmt.Fprintf(w, "%d comentários\n", len(list))
	for _, c := range list {
		liked := " "
		if userID != "" && c.LikedByUser(userID) {
			liked = "♥"
		}
		fmt.Fprintf(w, "%s  %s · %s\n", c.ID, c.Author.DisplayName, format.RelativeTime(now, c.CreatedAt))
		fmt.Fprintf(w, "    %s\n", c.Content)
		fmt.Fprintf(w, "    %s %d\n", liked, c.LikeCount)
	}
}

var commentsListCmd = &cobra.Command{
	Use:   "list <video-id>",
	Short: "List comments of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := parseOrder(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		list := a.Comments.List(cmd.Context(), args[0], order)
		printComments(cmd.OutOrStdout(), list, a.UserID(), time.Now())
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <video-id> <text...>",
	Short: "Post a comment as the signed-in user",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		form := comments.NewForm(args[0], a.Comments, a.Identity, nil)
		form.SetInput(strings.Join(args[1:], " "))
		if hint := form.RemainingHint(); hint != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), hint)
		}

		comment, err := form.Submit(cmd.Context())
		if err != nil {
			// Пользователю показывается сообщение формы, подробности - в логе
			a.Log.WithError(err).WithField("video_id", args[0]).Debug("comment rejected")
			return errors.New(form.Error())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Comentário publicado: %s\n", comment.ID)
		return nil
	},
}

var commentsLikeCmd = &cobra.Command{
	Use:   "like <video-id> <comment-id>",
	Short: "Toggle the signed-in user's like on a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		comment, err := a.Comments.ToggleLike(cmd.Context(), args[0], args[1], a.UserID())
		if err != nil {
			return err
		}
		state := "removida"
		if comment.LikedByUser(a.UserID()) {
			state = "registrada"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Curtida %s: %d\n", state, comment.LikeCount)
		return nil
	},
}

var commentsWatchCmd = &cobra.Command{
	Use:   "watch <video-id>",
	Short: "Print the comment list and reprint it on every change from other contexts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := parseOrder(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.Broadcaster == nil {
			a.Log.Warn("notify.type is none: the list will not refresh on changes")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		view := comments.NewListView(a.Comments, args[0], a.UserID())
		view.OnChange(func(list []*domain.Comment) {
			fmt.Fprintf(out, "--- %s ---\n", time.Now().Format(time.TimeOnly))
			printComments(out, list, a.UserID(), time.Now())
		})
		view.SetOrder(ctx, order)
		if err := view.Start(ctx); err != nil {
			return err
		}
		defer view.Close()

		<-ctx.Done()
		return nil
	},
}

// Тестовые комментарии для демонстрации списка.
var seedComments = []struct {
	author  domain.Author
	content string
}{
	{domain.Author{ID: "demo-1", DisplayName: "Dra. Maria Santos"}, "Excelente explicação sobre a técnica, muito didático!"},
	{domain.Author{ID: "demo-2", DisplayName: "Dr. João Pereira"}, "Poderia abordar as complicações pós-operatórias em um próximo vídeo?"},
	{domain.Author{ID: "demo-3", DisplayName: "Ana Costa"}, "Salvei para revisar antes da prova de residência."},
}

var commentsSeedCmd = &cobra.Command{
	Use:   "seed <video-id>",
	Short: "Fill a video with demo comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, s := range seedComments {
			if _, err := a.Comments.Add(cmd.Context(), args[0], s.content, s.author); err != nil {
				return errors.Wrapf(err, "failed to seed comment of %s", s.author.DisplayName)
			}
		}
		if err := a.Comments.NotifyChanged(cmd.Context(), args[0]); err != nil {
			a.Log.WithError(err).Warn("failed to broadcast comment change")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d comentários adicionados a %s\n", len(seedComments), args[0])
		return nil
	},
}
