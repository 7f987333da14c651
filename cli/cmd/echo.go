/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// echoCmd represents the echo command
var echoCmd = &cobra.Command{
	Use:   "echo <text...>",
	Short: "Sends a message to everyone online.",
	Long:  `Sends the given words as one chat message. Messages longer than 256 characters are cut by the server.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		ctx, err := authContext(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if _, err := chatClient.SendMessage(ctx, wrapperspb.String(text)); err != nil {
			fmt.Fprintf(os.Stderr, "Error calling SendMessage: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(echoCmd)
}
