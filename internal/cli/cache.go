package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUpdateCacheCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "update_cache",
		Short: "Refetch owned games and rewrite the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := e.app.Inventory.GetOwnedGamesDirect(cmd.Context(), e.cfg.Credentials)
			if err != nil {
				// unlike the read commands, a cache write failure is fatal here
				return err
			}

			e.out.PrintMessage(fmt.Sprintf("Updated cache (%d games)", len(snapshot.Games)))
			return nil
		},
	}
}
