package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"numlockd/internal/autostart"
)

func newAutostartCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage launching numlockd at logon",
	}

	enable := &cobra.Command{
		Use:   "enable",
		Short: "Start numlockd when the current user logs on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			var extra []string
			if root.configPath != "" {
				abs, err := filepath.Abs(root.configPath)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				extra = append(extra, "--config", abs)
			}
			if err := autostart.Enable(exe, extra...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled:", autostart.CommandLine(exe, extra...))
			return nil
		},
	}

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Stop launching numlockd at logon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := autostart.Disable(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether numlockd starts at logon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := autostart.Query()
			if err != nil {
				return err
			}
			if !st.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "autostart disabled")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "autostart enabled:", st.Command)
			return nil
		},
	}

	cmd.AddCommand(disable, enable, status)
	return cmd
}
