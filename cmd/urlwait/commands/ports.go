package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/ecairns22/urlwait/internal/service"
	"github.com/spf13/cobra"
)

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "Show the default port used for each URL scheme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCHEME\tPORT")

			for _, scheme := range service.Schemes() {
				port, _ := service.DefaultPort(scheme)
				fmt.Fprintf(w, "%s\t%d\n", scheme, port)
			}

			return w.Flush()
		},
	}
}
