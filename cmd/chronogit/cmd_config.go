package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"chronogit/internal/config"
)

// configCmd manages the config file.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize the configuration",
	RunE:  showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  initConfig,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	display := *cfg
	if display.GitHub.Token != "" {
		display.GitHub.Token = "***"
	}
	out, err := yaml.Marshal(&display)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	defaults := config.DefaultConfig()
	if err := defaults.Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}
