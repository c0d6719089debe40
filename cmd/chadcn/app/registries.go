package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chadcn/registry-catalog/internal/catalog"
	"github.com/chadcn/registry-catalog/internal/config"
	"github.com/chadcn/registry-catalog/internal/db"
)

func newRegistriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registries",
		Short: "Inspect the configured registry listings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch every listed registry and print a summary table",
		Args:  cobra.NoArgs,
		RunE:  runRegistriesList,
	}
	listCmd.Flags().StringP("query", "q", "", "Only show listings whose id, name, description or author contains the query")

	addCmd := &cobra.Command{
		Use:   "add URL",
		Short: "Add a registry URL to the database catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runRegistriesAdd,
	}

	cmd.AddCommand(listCmd, addCmd)
	return cmd
}

func runRegistriesList(cmd *cobra.Command, _ []string) error {
	query, err := cmd.Flags().GetString("query")
	if err != nil {
		return fmt.Errorf("failed to get query flag: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	comps, err := newComponents(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	defer comps.Close()

	listings, err := comps.controller.Load(cmd.Context())
	if err != nil {
		return err
	}
	return renderListings(cmd.OutOrStdout(), catalog.Filter(listings, query))
}

func renderListings(w io.Writer, listings []catalog.Listing) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Author", "Components", "Featured", "Status")
	for _, l := range listings {
		status := "ok"
		components := strconv.Itoa(l.ComponentCount)
		if l.Failed() {
			status = l.Error
			components = "-"
		}
		featured := ""
		if l.Featured {
			featured = "yes"
		}
		if err := table.Append([]string{l.ID, l.Name, l.Author, components, featured, status}); err != nil {
			return fmt.Errorf("failed to render listing %s: %w", l.ID, err)
		}
	}
	return table.Render()
}

func runRegistriesAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.GetSourceType() != config.SourceTypeDatabase {
		return fmt.Errorf("registries can only be added to a database catalog; edit %s instead", cfg.Catalog.File.Path)
	}

	conn, err := db.NewConnection(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	listing, err := catalog.NewDatabaseSource(conn.Queries).Add(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Registry %s stored with id %s\n", listing.URL, listing.ID)
	return err
}
