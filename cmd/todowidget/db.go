package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
)

const commandTimeout = 30 * time.Second

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the todo tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			if err := a.manager.Connect(ctx); err != nil {
				return err
			}
			defer a.manager.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date on %s\n", a.manager.CurrentConfig())
			return nil
		},
	}
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and change the database connection",
	}

	cmd.AddCommand(newDBTestCmd(), newDBStatusCmd(), newDBConfigCmd())
	return cmd
}

// addConnectionFlags registers one flag per connection setting.
func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "database host")
	cmd.Flags().Int("port", 0, "database port")
	cmd.Flags().String("database", "", "database name")
	cmd.Flags().String("user", "", "database user")
	cmd.Flags().String("password", "", "database password")
	cmd.Flags().String("sslmode", "", "libpq sslmode")
}

// connectionPatch collects only the flags that were set on the command line.
func connectionPatch(cmd *cobra.Command) config.ConnectionPatch {
	var p config.ConnectionPatch
	flags := cmd.Flags()
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	p.Host = str("host")
	p.Database = str("database")
	p.User = str("user")
	p.Password = str("password")
	p.SSLMode = str("sslmode")
	if flags.Changed("port") {
		port, _ := flags.GetInt("port")
		p.Port = &port
	}
	return p
}

func printResult(cmd *cobra.Command, result database.Result) error {
	if !result.Success {
		return errors.New(result.Message)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}

func newDBTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Probe the configured database, optionally overriding settings with flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			cfg := a.manager.CurrentConfig().Apply(connectionPatch(cmd))
			return printResult(cmd, a.manager.TestConnection(cmd.Context(), cfg))
		},
	}
	addConnectionFlags(cmd)
	return cmd
}

func newDBStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the configured database answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			cfg := a.manager.CurrentConfig()
			result := a.manager.TestConnection(cmd.Context(), cfg)

			out, err := json.MarshalIndent(map[string]any{
				"connected": result.Success,
				"server":    cfg.String(),
				"message":   result.Message,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newDBConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the stored connection settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the connection settings in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			cfg := a.manager.CurrentConfig()
			if reveal, _ := cmd.Flags().GetBool("reveal"); !reveal {
				cfg = cfg.Masked()
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			fmt.Fprintf(cmd.OutOrStdout(), "# stored in %s\n", a.store.Path())
			return nil
		},
	}
	show.Flags().Bool("reveal", false, "print the password in clear text")

	set := &cobra.Command{
		Use:   "set",
		Short: "Change the stored connection settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			patch := connectionPatch(cmd)

			if apply, _ := cmd.Flags().GetBool("apply"); apply {
				ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
				defer cancel()
				result := a.manager.Reconnect(ctx, a.manager.CurrentConfig().Apply(patch))
				defer a.manager.Close()
				return printResult(cmd, result)
			}

			if err := a.manager.Configure(patch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to %s\n", a.manager.CurrentConfig(), a.store.Path())
			return nil
		},
	}
	addConnectionFlags(set)
	set.Flags().Bool("apply", false, "save, then reconnect with the new settings and ensure the schema")

	cmd.AddCommand(show, set)
	return cmd
}
