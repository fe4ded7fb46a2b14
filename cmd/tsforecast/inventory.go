package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inventory",
		Short: "List the datasets available in the data home",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.loader().Inventory()
			if err != nil {
				return err
			}
			a.logger.Debug().Int("datasets", len(names)).Str("data_home", a.cfg.DataHome).Msg("listed inventory")

			out := cmd.OutOrStdout()
			if a.asJSON {
				if names == nil {
					names = []string{}
				}
				return json.NewEncoder(out).Encode(names)
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
