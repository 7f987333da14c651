package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var vimCmd = &cobra.Command{
	Use:   "vim",
	Short: "Opens a full-screen chat window",
	Long: `Opens a tview chat window: live events above, an input line below.
Press Enter to send and Ctrl+C to quit.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		userName := viper.GetString(userNameKey)
		if userName == "" || sessionToken == "" {
			fmt.Fprintln(os.Stderr, "not joined: run 'join <name>' first")
			return
		}

		if err := runChatUITview(chatClient, userName); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(vimCmd)
}

func runChatUITview(client pb.ChatServiceClient, userName string) error {
	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()

	inputField := tview.NewInputField().
		SetLabel(userName + " ❯❯ ").
		SetFieldWidth(0).
		SetAcceptanceFunc(tview.InputFieldMaxLength(256))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authCtx, err := authContext(ctx)
	if err != nil {
		return err
	}

	users, err := client.ListUsers(ctx, &emptypb.Empty{})
	if err != nil {
		fmt.Fprintf(textView, "[red]Error loading users: %v\n", err)
	} else {
		fmt.Fprintf(textView, "[green]Online: %s\n", tviewEscape(strings.Join(pb.Users(users), ", ")))
	}

	stream, err := client.StreamEvents(authCtx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("StreamEvents failed: %w", err)
	}
	fmt.Fprintf(textView, "[green]Welcome! You are %s. (Ctrl+C to exit)\n", tviewEscape(userName))

	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				app.QueueUpdateDraw(func() {
					if errors.Is(err, io.EOF) {
						fmt.Fprintln(textView, "[red]Stream closed by server.")
					} else {
						fmt.Fprintf(textView, "[red]Error receiving events: %v\n", err)
					}
				})
				return
			}
			event, err := pb.EventFromStruct(msg)
			if err != nil {
				continue
			}
			line := formatEvent(event, time.Now(), true)
			app.QueueUpdateDraw(func() {
				fmt.Fprintln(textView, line)
				textView.ScrollToEnd()
			})
		}
	}()

	inputField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(inputField.GetText())
		if text == "" {
			return
		}
		inputField.SetText("")
		go func() {
			sendCtx, sendCancel := context.WithTimeout(authCtx, 10*time.Second)
			defer sendCancel()
			if _, err := client.SendMessage(sendCtx, wrapperspb.String(text)); err != nil {
				app.QueueUpdateDraw(func() {
					fmt.Fprintf(textView, "[red]Failed to send message: %v\n", err)
				})
			}
		}()
	})

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			cancel()
			app.Stop()
			return nil
		}
		return event
	})

	return app.Run()
}

func tviewEscape(s string) string {
	return tview.Escape(s)
}
