package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/onnwee/kc-tender/extract"
	"github.com/onnwee/kc-tender/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats <player>",
	Short: "Print the stored statistics of a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	player := args[0]

	database, dialect, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer closeDB(database)

	store, err := stats.NewSQLStore(database, dialect)
	if err != nil {
		return err
	}
	st := stats.New(store)

	kcs, err := st.KillCounts(ctx, player)
	if err != nil {
		return fmt.Errorf("list kill counts: %w", err)
	}
	pbs, err := st.PersonalBests(ctx, player)
	if err != nil {
		return fmt.Errorf("list personal bests: %w", err)
	}
	if len(kcs) == 0 && len(pbs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no statistics stored for %s\n", player)
		return nil
	}

	categories := make([]string, 0, len(kcs)+len(pbs))
	for c := range kcs {
		categories = append(categories, c)
	}
	for c := range pbs {
		if _, ok := kcs[c]; !ok {
			categories = append(categories, c)
		}
	}
	sort.Strings(categories)

	t := table.New("Category", "Kill Count", "Personal Best").WithWriter(cmd.OutOrStdout())
	for _, c := range categories {
		kc, pb := "-", "-"
		if n, ok := kcs[c]; ok {
			kc = humanize.Comma(int64(n))
		}
		if n, ok := pbs[c]; ok {
			pb = extract.FormatDuration(n)
		}
		t.AddRow(c, kc, pb)
	}
	t.Print()
	return nil
}
