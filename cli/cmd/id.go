/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// idCmd represents the id command
var idCmd = &cobra.Command{
	Use:   "id [name]",
	Short: "Prints whether a user is online.",
	Long: `Prints the given user's presence, or your own display name and
presence when no name is given.`,
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: UserCompletionFunc,
	Run: func(cmd *cobra.Command, args []string) {
		name := viper.GetString(userNameKey)
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			fmt.Fprintln(os.Stderr, "not joined: run 'join <name>' first")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		res, err := chatClient.DoesUserExist(ctx, wrapperspb.String(name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error calling DoesUserExist: %v\n", err)
			return
		}

		state := "offline"
		if res.GetValue() {
			state = "online"
		}
		fmt.Printf("DisplayName: %s (%s)\n", name, state)
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
