package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relay-cli/internal/push"
)

func newNotifyCmd(app *App) *cobra.Command {
	var msg push.Message
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Queue a notification for the next launch",
		Long:  "Queue a notification payload. The next `relay` start opens it ahead of any launch URL.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(msg.RoomID) == "" {
				return writeErr(cmd, usageError{arg: "--rid", want: "a room id"})
			}
			payload, err := push.NewPayload(msg)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			s := app.store()
			id, err := s.EnqueueNotification(ctx, payload)
			if err != nil {
				return writeErr(cmd, err)
			}
			pending, err := s.PendingNotifications(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":      id,
				"pending": pending,
			}})
		},
	}
	cmd.Flags().StringVar(&msg.RoomID, "rid", "", "Room id (required)")
	cmd.Flags().StringVar(&msg.Host, "host", "", "Server host")
	cmd.Flags().StringVar(&msg.RoomType, "type", "", "Room type (c|p|d)")
	cmd.Flags().StringVar(&msg.MessageID, "message", "", "Message id")
	return cmd
}
