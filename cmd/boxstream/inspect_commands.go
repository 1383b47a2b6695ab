package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"boxstream/models"
	"boxstream/services/release"
)

func parseKindArg(arg string) (models.MediaKind, error) {
	kind, ok := models.ParseMediaKind(arg)
	if !ok {
		return "", fmt.Errorf("unsupported type %q (want movie or series)", arg)
	}
	return kind, nil
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	var skip int

	cmd := &cobra.Command{
		Use:   "catalog <movie|series>",
		Short: "Print the catalog for a type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}

			entries := a.catalog.BuildPage(cmd.Context(), kind, skip)
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for i, e := range entries {
				rows = append(rows, []string{strconv.Itoa(skip + i + 1), e.ID, e.Name, e.ReleaseInfo, e.Quality, e.SourceName})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "ID", "Name", "Released", "Quality", "Source"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of distinct entries to skip")
	return cmd
}

func newStreamsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "streams <id>",
		Short: "Print playback links for a canonical ID (tt… or torbox:…)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			links := a.streams.Resolve(cmd.Context(), args[0])
			if len(links) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No streams")
				return nil
			}
			rows := make([][]string, 0, len(links))
			for _, l := range links {
				size := ""
				if l.Size > 0 {
					size = humanize.Bytes(uint64(l.Size))
				}
				rows = append(rows, []string{l.InventoryID, l.FileID, l.Quality, size, l.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Entry", "File", "Quality", "Size", "URL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newMetaCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <movie|series> <id>",
		Short: "Print the detail record for a canonical ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKindArg(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			meta := a.catalog.Meta(cmd.Context(), kind, args[1])
			if meta == nil {
				return fmt.Errorf("no metadata for %s", args[1])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func newAccountCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Print content account details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			info, err := a.provider.GetAccountInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("account info: %w", err)
			}

			expires := "-"
			if info.ExpiresAt != nil {
				expires = fmt.Sprintf("%s (%s)", info.ExpiresAt.Format("2006-01-02"), humanize.Time(*info.ExpiresAt))
			}
			rows := [][]string{
				{"Email", info.Email},
				{"Plan", info.PlanName},
				{"Premium", yesNo(info.PremiumActive)},
				{"Expires", expires},
				{"Downloaded", humanize.Bytes(uint64(max(info.TotalDownloaded, 0)))},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "parse <release name>...",
		Short:       "Show how release names are parsed",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, name := range args {
				d := release.Parse(name)
				rows = append(rows, []string{name, d.Title, optionalInt(d.Year), optionalInt(d.Season), optionalInt(d.Episode), d.Quality, string(d.Kind)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Title", "Year", "Season", "Episode", "Quality", "Kind"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func optionalInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

