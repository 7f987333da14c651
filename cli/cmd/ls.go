/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/protobuf/types/known/emptypb"
)

// lsCmd represents the ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Lists online users.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		res, err := chatClient.ListUsers(ctx, &emptypb.Empty{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error calling ListUsers: %v\n", err)
			return
		}

		users := pb.Users(res)
		if len(users) == 0 {
			fmt.Println("Nobody is online.")
			return
		}
		sort.Strings(users)
		me := viper.GetString(userNameKey)
		for _, user := range users {
			marker := " "
			if user == me {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, user)
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
