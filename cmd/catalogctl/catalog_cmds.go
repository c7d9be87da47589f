package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/go-catalog/internal/http/views"
	"github.com/pribylovaa/go-catalog/internal/models"
)

// shownEntry — запись с готовой внешней ссылкой.
type shownEntry struct {
	models.Entry `yaml:",inline"`
	OutboundURL  string `json:"outboundUrl" yaml:"outbound_url"`
}

func (c *cli) listCmd() *cobra.Command {
	var (
		sortFlag string
		page     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := models.ParseSort(sortFlag)
			if err != nil {
				return err
			}

			a, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}

			view, err := a.Catalog.Load(cmd.Context(), sel)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			if page != view.Page {
				view = a.Catalog.SetPage(page)
			}

			if c.output != outputTable {
				return encode(cmd.OutOrStdout(), c.output, view)
			}

			fmt.Fprint(cmd.OutOrStdout(), entriesTable(view))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(models.SortRecent), "sort order: recent|popular")
	cmd.Flags().IntVar(&page, "page", 1, "page number (clamped to the available range)")

	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			a, err := c.appFor(cmd.Context())
			if err != nil {
				return err
			}

			e, err := a.Catalog.EntryByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := shownEntry{Entry: e, OutboundURL: a.Prefs.OutboundURL(e.Link)}
			if c.output != outputTable {
				return encode(cmd.OutOrStdout(), c.output, out)
			}

			fmt.Fprint(cmd.OutOrStdout(), keyValues([][2]string{
				{"ID", strconv.FormatInt(e.ID, 10)},
				{"Name", e.Name},
				{"Views", views.CompactNumber(e.Views)},
				{"Created", views.FormatDate(e)},
				{"Link", out.OutboundURL},
				{"About", e.Description},
			}))
			return nil
		},
	}
}
