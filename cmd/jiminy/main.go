package main

import (
	clay "github.com/go-go-golems/clay/pkg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/jiminy/cmd/jiminy/cmds"
	"github.com/go-go-golems/jiminy/pkg/api"
	"github.com/go-go-golems/jiminy/pkg/tui"
)

var rootCmd = &cobra.Command{
	Use:   "jiminy",
	Short: "jiminy is a terminal client for a knowledge-base chat service",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// reinitialize the logger once --log-level and co are parsed
		err := clay.InitLogger()
		cobra.CheckErr(err)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(api.NewClient(viper.GetString("server")))
	},
}

func main() {
	err := initRootCmd()
	cobra.CheckErr(err)

	err = rootCmd.Execute()
	cobra.CheckErr(err)
}

func initRootCmd() error {
	rootCmd.PersistentFlags().String("server", api.DefaultBaseURL, "backend base URL")

	err := clay.InitViper("jiminy", rootCmd)
	if err != nil {
		return err
	}
	err = clay.InitLogger()
	if err != nil {
		return err
	}

	if err := viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")); err != nil {
		return err
	}

	rootCmd.AddCommand(cmds.NewChatCommand())
	rootCmd.AddCommand(cmds.NewChatsCommand())
	rootCmd.AddCommand(cmds.NewAskCommand())
	rootCmd.AddCommand(cmds.NewHealthCommand())
	return nil
}
