package cli

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/reviewforge/reviewforge/internal/daemon"
	"github.com/reviewforge/reviewforge/internal/domain"
	"github.com/reviewforge/reviewforge/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(seedPacksCmd)
	rootCmd.AddCommand(seedProductsCmd)
	rootCmd.AddCommand(backfillSpecialPctCmd)
}

var seedPacksCmd = &cobra.Command{
	Use:   "seed-packs",
	Short: "Seed the default starter, bronze and gold packs",
	RunE:  runSeedPacks,
}

var seedProductsCmd = &cobra.Command{
	Use:   "seed-products",
	Short: "Seed a handful of sample albums for review",
	RunE:  runSeedProducts,
}

var backfillSpecialPctCmd = &cobra.Command{
	Use:   "backfill-special-pct",
	Short: "Backfill special_product_percentage on packs that never set one",
	RunE:  runBackfillSpecialPct,
}

func runSeedPacks(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.ReviewforgeHome())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	packs := []domain.Pack{
		{
			Name:                         "starter",
			UsdValue:                     decimal.Zero,
			DailyMissions:                10,
			NumberOfSet:                  1,
			ProfitPercentage:             decimal.NewFromInt(1),
			MinimumBalanceForSubmissions: decimal.Zero,
			IsActive:                     true,
		},
		{
			Name:                         "bronze",
			UsdValue:                     decimal.NewFromInt(100),
			DailyMissions:                20,
			NumberOfSet:                  2,
			ProfitPercentage:             decimal.NewFromFloat(1.5),
			MinimumBalanceForSubmissions: decimal.NewFromInt(50),
			IsActive:                     true,
		},
		{
			Name:                         "gold",
			UsdValue:                     decimal.NewFromInt(1000),
			DailyMissions:                30,
			NumberOfSet:                  3,
			ProfitPercentage:             decimal.NewFromInt(2),
			MinimumBalanceForSubmissions: decimal.NewFromInt(500),
			IsActive:                     true,
		},
	}
	for i := range packs {
		if _, err := db.CreatePack(ctx, &packs[i]); err != nil {
			return err
		}
	}
	fmt.Printf("seeded %d packs\n", len(packs))
	return nil
}

func runSeedProducts(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.ReviewforgeHome())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	products := []domain.Product{
		{Name: "Midnight Transit", Price: decimal.NewFromFloat(12.99), RatingNo: "R-1001"},
		{Name: "Gravel Road Theory", Price: decimal.NewFromFloat(9.5), RatingNo: "R-1002"},
		{Name: "Low Frequency Visitors", Price: decimal.NewFromFloat(14.25), RatingNo: "R-1003"},
		{Name: "Glass Orchard", Price: decimal.NewFromFloat(11.0), RatingNo: "R-1004"},
		{Name: "Static Bloom", Price: decimal.NewFromFloat(8.75), RatingNo: "R-1005"},
	}
	for i := range products {
		if _, err := db.CreateProduct(ctx, &products[i]); err != nil {
			return err
		}
	}
	fmt.Printf("seeded %d products\n", len(products))
	return nil
}

func runBackfillSpecialPct(cmd *cobra.Command, args []string) error {
	db, err := sqlite.Open(daemon.ReviewforgeHome())
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.BackfillSpecialPercentage(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("backfilled %d packs\n", n)
	return nil
}
