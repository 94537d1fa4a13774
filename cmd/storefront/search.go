package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Manage the product search index",
}

var searchReindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the product index from the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.ESURL == "" {
			return errors.New("ES_URL is not set")
		}
		ctx := cmd.Context()

		gdb, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		es, err := search.NewClient(ctx, search.Options{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			return err
		}
		products := &search.Products{ES: es, Index: cfg.ESIndex}
		if err := products.EnsureIndex(ctx); err != nil {
			return err
		}

		n, err := search.Reindex(ctx, &repo.GormRepo{DB: gdb}, products)
		logger.Info("reindex finished", "indexed", n, "index", cfg.ESIndex)
		return err
	},
}
