package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/receipt"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Manage stored order receipts",
}

var receiptsRegenerateCmd = &cobra.Command{
	Use:   "regenerate [order-number...]",
	Short: "Re-render receipts from persisted orders (all orders when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		gdb, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		store, err := receipt.NewStore(cfg.ReceiptsDir)
		if err != nil {
			return err
		}
		orders := &service.OrderService{
			Repo:     &repo.GormRepo{DB: gdb},
			Receipts: &service.ReceiptIssuer{Store: store, StoreName: cfg.StoreName},
		}

		n, err := orders.RegenerateReceipts(ctx, args)
		logger.Info("receipts regenerated", "count", n, "dir", cfg.ReceiptsDir)
		return err
	},
}
