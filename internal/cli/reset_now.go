package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/app/reset"
	"github.com/reviewforge/reviewforge/internal/daemon"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(resetNowCmd)
}

var resetNowCmd = &cobra.Command{
	Use:   "reset-now",
	Short: "Run the daily reset pass if it is due",
	RunE:  runResetNow,
}

func runResetNow(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.ReviewforgeHome())
	if err != nil {
		return err
	}
	defer db.Close()

	svc := reset.NewService(db)
	if err := svc.CheckAndReset(context.Background()); err != nil {
		return err
	}
	fmt.Println("daily reset pass complete")
	return nil
}
