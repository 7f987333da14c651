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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join <name>",
	Short: "Joins the chat under a display name.",
	Long: `Claims a display name on the livechat server and stores the returned
session token in the config file. Names are unique regardless of case and
"system" is reserved.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		res, err := chatClient.Join(ctx, wrapperspb.String(name))
		if err != nil {
			if status.Code(err) == codes.AlreadyExists {
				fmt.Fprintf(os.Stderr, "Name %s is already taken\n", name)
				return
			}
			fmt.Fprintf(os.Stderr, "Error calling Join for %s: %v\n", name, err)
			return
		}

		sessionToken = res.GetValue()
		viper.Set(sessionTokenKey, sessionToken)
		viper.Set(userNameKey, name)
		if err := saveConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing config file:", err)
		}
		fmt.Printf("Joined as %s\n", name)
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
