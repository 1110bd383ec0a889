package main

import (
	"fmt"
	"os"

	"github.com/myrjola/whodunit/cmd/cli/img"
	"github.com/myrjola/whodunit/cmd/cli/play"
	"github.com/myrjola/whodunit/cmd/cli/records"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddGroup(play.Group)
	rootCmd.AddCommand(play.Play, play.Auto)
	rootCmd.AddGroup(records.Group)
	rootCmd.AddCommand(records.Sessions, records.Transcript)
	rootCmd.AddGroup(img.Group)
	rootCmd.AddCommand(img.Portrait)
}

var rootCmd = &cobra.Command{
	Use:           "whodunit",
	Long:          `Interrogate the suspects of a murder mystery played by language models`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
