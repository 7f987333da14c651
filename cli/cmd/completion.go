package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
)

// UserCompletionFunc completes online user names.
func UserCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || chatClient == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, user := range onlineUsers() {
		if strings.HasPrefix(user, toComplete) {
			names = append(names, user)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func onlineUsers() []string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res, err := chatClient.ListUsers(ctx, &emptypb.Empty{})
	if err != nil {
		return nil
	}
	return pb.Users(res)
}

// replCompleter suggests subcommands for the first word and nothing after,
// so the shell never blocks on the network while typing.
func replCompleter(d prompt.Document) []prompt.Suggest {
	before := d.TextBeforeCursor()
	if strings.Contains(before, " ") {
		return nil
	}
	return prompt.FilterHasPrefix(commandSuggestions(), d.GetWordBeforeCursor(), true)
}

func commandSuggestions() []prompt.Suggest {
	suggestions := []prompt.Suggest{{Text: "exit", Description: "Leave the interactive shell"}}
	for _, c := range rootCmd.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		suggestions = append(suggestions, prompt.Suggest{Text: c.Name(), Description: c.Short})
	}
	return suggestions
}
