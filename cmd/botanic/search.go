package main

import (
	"context"
	"fmt"

	iodatabase "github.com/gnames/botanic/internal/io/database"
	iosearch "github.com/gnames/botanic/internal/io/search"
	iotaxon "github.com/gnames/botanic/internal/io/taxon"
	"github.com/gnames/botanic/pkg/database"
	"github.com/gnames/botanic/pkg/lifecycle"
	"github.com/gnames/botanic/pkg/plan"
	"github.com/gnames/botanic/pkg/search"
	"github.com/gnames/botanic/pkg/taxon"
	"github.com/spf13/cobra"
)

// mapCacheCapacity bounds the process-wide distribution-map SVG cache
// (§5 "Shared resources").
const mapCacheCapacity = 64

func getSearchCmd() *cobra.Command {
	var confirmScan bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Runs a search query against the collection",
		Long: `Runs a search query using whichever of the four query dialects the
text matches: a domain-prefix filter ("sp = Maxillaria"), a comma- or
space-separated value list ("Ixora, Maxillaria"), a full binomial
("Maxillaria variabilis"), or the mapper query language ("species where
epithet == \"Maxillaria\"").

Examples:
  botanic search "sp = Maxillaria"
  botanic search "Ixora, Maxillaria"
  botanic search "Maxillaria variabilis"
  botanic search "species where count(accession.id) > 0"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], confirmScan)
		},
	}
	cmd.Flags().BoolVar(&confirmScan, "yes", false,
		"run a short-token value-list search that is otherwise declined by the small-value guard")
	return cmd
}

func runSearch(ctx context.Context, queryText string, skipConfirm bool) error {
	cfg := getConfig()

	var op database.Operator = iodatabase.NewPgxOperator()
	if err := op.Connect(ctx, &cfg.Database); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer op.Close()

	reg := plan.NewBotanicRegistry()
	valueListDomains := []string{"family", "genus", "species", "geography", "vernacular_name"}

	d := search.NewDispatcher()
	d.Register(&search.DomainPrefixStrategy{Registry: reg, Exec: iosearch.NewPlanExecutor(op)})
	d.Register(&search.BinomialStrategy{Exec: iosearch.NewBinomialExecutor(op)})
	d.Register(&search.ValueListStrategy{
		Exec: iosearch.NewValueListExecutor(op, reg, valueListDomains),
		Confirm: func(_ context.Context, _ string) bool {
			return skipConfirm
		},
	})
	d.Register(&search.MapperQueryStrategy{Registry: reg, Exec: iosearch.NewPlanExecutor(op)})
	d.Register(&search.SynonymStrategy{
		Repo:           iotaxon.NewRepository(op),
		Rank:           taxon.RankSpecies,
		ReturnAccepted: func() bool { return cfg.Search.ReturnAccepted },
		ReadsFrom:      []string{"domain", "binomial", "valuelist", "mapper"},
	})

	impl, err := iosearch.NewSearcher(op, d, mapCacheCapacity)
	if err != nil {
		return fmt.Errorf("failed to build searcher: %w", err)
	}
	var searcher lifecycle.Searcher = impl

	ids, err := searcher.Search(ctx, queryText)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(ids) == 0 {
		fmt.Println("No matches")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("%d match(es)\n", len(ids))
	return nil
}
