package main

import (
	"fmt"
	"os"
	"path/filepath"

	"skiff/internal/config"
	"skiff/internal/keymap"
	"skiff/internal/poll"

	"github.com/spf13/cobra"
)

// checkCmd validates the configuration without starting a session:
// parseable config, reachable sources, resolvable key overrides.
func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and source reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			global, err := keymap.Default()
			if err != nil {
				return err
			}
			if err := keymap.ApplyOverrides(global, cfg.Keys); err != nil {
				return err
			}
			fmt.Printf("keymap ok (%d override(s))\n", len(cfg.Keys))

			if len(cfg.Sources) == 0 {
				fmt.Println("no sources configured")
			}
			bad := 0
			for _, sc := range cfg.Sources {
				src, err := poll.NewMaildirSource(sc)
				if err != nil {
					fmt.Printf("source %-20s invalid: %v\n", sc.Name, err)
					bad++
					continue
				}
				if err := src.Connect(); err != nil {
					fmt.Printf("source %-20s unreachable: %v\n", sc.Name, err)
					bad++
					continue
				}
				fmt.Printf("source %-20s ok\n", sc.Name)
			}
			if bad > 0 {
				return fmt.Errorf("%d source(s) failed the check", bad)
			}
			fmt.Printf("data directory: %s\n", cfg.Directories.Data)
			return nil
		},
	}
}

// initCmd writes a default config file for editing. Refuses to
// overwrite an existing one.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".config", "skiff", "config.yaml")
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}
			if err := config.Save(config.New(), path); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}
