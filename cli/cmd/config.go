/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [grpc_server_address]",
	Short: "Shows or sets the client configuration.",
	Long: `Without arguments, prints the server address and the joined user.
With an argument, stores it as the gRPC server address.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("Server:      %s\n", viper.GetString(grpcServerAddressKey))
			fmt.Printf("DisplayName: %s\n", viper.GetString(userNameKey))
			fmt.Printf("Session:     %t\n", viper.GetString(sessionTokenKey) != "")
			if used := viper.ConfigFileUsed(); used != "" {
				fmt.Printf("ConfigFile:  %s\n", used)
			}
			return
		}

		viper.Set(grpcServerAddressKey, args[0])
		if err := saveConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing config file:", err)
			return
		}
		fmt.Printf("Server set to: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
