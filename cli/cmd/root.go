/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-shellwords"
	pb "github.com/ponyo877/livechat/chatpb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

var (
	cfgFile           string
	sessionToken      string
	grpcServerAddress string
	chatClient        pb.ChatServiceClient
	grpcConn          *grpc.ClientConn
)

const (
	sessionTokenKey      = "session_token"
	userNameKey          = "user_name"
	grpcServerAddressKey = "grpc_server_address"
	configName           = ".livechat"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "livechat",
	Short: "Terminal client for the livechat server.",
	Long: `livechat talks to a livechat server over gRPC. Join with a display
name, send messages with echo and follow the room with tail -f or vim.
Run without arguments for an interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conn, err := grpc.NewClient(grpcServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("did not connect to gRPC server: %w", err)
		}
		grpcConn = conn
		chatClient = pb.NewChatServiceClient(conn)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if grpcConn != nil {
			return grpcConn.Close()
		}
		return nil
	},
}

// Execute runs a single command when arguments are given, otherwise it
// starts the interactive shell.
func Execute() {
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	fmt.Println("entering interactive mode, type 'exit' to quit")
	for {
		line := strings.TrimSpace(prompt.Input("❯❯❯ ", replCompleter,
			prompt.OptionTitle("livechat"),
			prompt.OptionPrefixTextColor(prompt.Cyan),
		))
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return
		}
		args, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error parsing input:", err)
			continue
		}
		rootCmd.SetArgs(args)
		_ = rootCmd.Execute()
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.livechat.yaml)")
	rootCmd.PersistentFlags().String("token", "", "Session token returned by join")
	rootCmd.PersistentFlags().String("grpc-server", "localhost:50051", "Address of the livechat gRPC server")

	_ = viper.BindPFlag(sessionTokenKey, rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag(grpcServerAddressKey, rootCmd.PersistentFlags().Lookup("grpc-server"))
	viper.SetDefault(grpcServerAddressKey, "localhost:50051")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix("LIVECHAT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	sessionToken = viper.GetString(sessionTokenKey)
	grpcServerAddress = viper.GetString(grpcServerAddressKey)
}

// saveConfig writes the current settings, creating the config file on
// first use.
func saveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, configName+".yaml")
		}
		return viper.WriteConfigAs(path)
	}
	return nil
}

// authContext attaches the stored session token to outgoing calls.
func authContext(ctx context.Context) (context.Context, error) {
	if sessionToken == "" {
		return nil, errors.New("not joined: run 'join <name>' first")
	}
	return metadata.AppendToOutgoingContext(ctx, pb.TokenMetadataKey, "Bearer "+sessionToken), nil
}
