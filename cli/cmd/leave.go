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
	"google.golang.org/protobuf/types/known/emptypb"
)

// leaveCmd represents the leave command
var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "Leaves the chat and forgets the session.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		ctx, err := authContext(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if _, err := chatClient.Leave(ctx, &emptypb.Empty{}); err != nil {
			fmt.Fprintf(os.Stderr, "Error calling Leave: %v\n", err)
			return
		}

		name := viper.GetString(userNameKey)
		sessionToken = ""
		viper.Set(sessionTokenKey, "")
		viper.Set(userNameKey, "")
		if err := saveConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing config file:", err)
		}
		fmt.Printf("Left as %s\n", name)
	},
}

func init() {
	rootCmd.AddCommand(leaveCmd)
}
