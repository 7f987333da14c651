/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"
	"unicode"

	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
)

var follow bool // Flag for -f option

// tailCmd represents the tail command
var tailCmd = &cobra.Command{
	Use:   "tail -f",
	Short: "Follows chat messages and joins/leaves as they happen.",
	Long: `Opens a live event stream and prints every message, join and leave
until interrupted. The server keeps no history, so -f is required.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if !follow {
			fmt.Fprintln(os.Stderr, "no history is kept; use tail -f to follow the chat")
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		authCtx, err := authContext(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		stream, err := chatClient.StreamEvents(authCtx, &emptypb.Empty{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error calling StreamEvents: %v\n", err)
			return
		}

		for {
			msg, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				fmt.Fprintf(os.Stderr, "Error receiving events: %v\n", err)
				break
			}
			event, err := pb.EventFromStruct(msg)
			if err != nil {
				continue
			}
			fmt.Println(formatEvent(event, time.Now(), false))
		}
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow the chat as it happens")
}

// formatEvent renders one event as a chat line, with tview color tags when
// colored is set. Terminal control characters never reach the output.
func formatEvent(event pb.Event, at time.Time, colored bool) string {
	ts := at.Format("15:04:05")
	user, text := printable(event.User), printable(event.Message)
	if colored {
		user, text = tviewEscape(user), tviewEscape(text)
	}
	switch event.Kind {
	case "message":
		if colored {
			return fmt.Sprintf("[white][%s] [blue]%s[white]: %s", ts, user, text)
		}
		return fmt.Sprintf("[%s] %s: %s", ts, user, text)
	case "user-joined":
		if colored {
			return fmt.Sprintf("[green][%s] %s joined", ts, user)
		}
		return fmt.Sprintf("[%s] %s joined", ts, user)
	case "user-left":
		if colored {
			return fmt.Sprintf("[yellow][%s] %s left", ts, user)
		}
		return fmt.Sprintf("[%s] %s left", ts, user)
	default:
		return fmt.Sprintf("[%s] %s %s", ts, printable(event.Kind), user)
	}
}

// printable folds line breaks and tabs into spaces and replaces any other
// control character with U+FFFD.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return unicode.ReplacementChar
		}
		return r
	}, strings.ToValidUTF8(s, "\uFFFD"))
}
