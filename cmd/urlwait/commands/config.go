package commands

import (
	"fmt"

	"github.com/ecairns22/urlwait/internal/config"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if template {
				fmt.Fprint(w, config.TemplateConfig())
				return nil
			}

			path, _ := cmd.Flags().GetString("config")
			settings, err := loadSettings(path)
			if err != nil {
				return err
			}
			if path == "" {
				path = config.DefaultPath()
			}

			fmt.Fprintf(w, "Config:   %s\n", path)
			fmt.Fprintf(w, "Variable: %s\n", settings.VarName)
			fmt.Fprintf(w, "Timeout:  %ds\n", settings.Timeout)
			return nil
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, "Print an example settings file")

	return cmd
}
