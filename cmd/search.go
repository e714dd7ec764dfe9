package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sportzvillage/svassist/internal/search"
	"github.com/sportzvillage/svassist/internal/vectordb"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Semantically search timetables, lessons and props",
	Long: `Runs a federated semantic search across the cached program data and
prints the globally best matches. Use --collection to restrict the
search to one category, or --context to print a prompt-ready context
block instead of ranked results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum number of results (default from config)")
	searchCmd.Flags().String("school", "", "restrict results to one school id")
	searchCmd.Flags().String("collection", "", "search a single collection: timetables, lessons, props, documents")
	searchCmd.Flags().String("context", "", "print a context block instead; one of: all, timetables, lessons, props, documents")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	limit, _ := cmd.Flags().GetInt("limit")
	school, _ := cmd.Flags().GetString("school")
	collection, _ := cmd.Flags().GetString("collection")
	contextType, _ := cmd.Flags().GetString("context")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := buildStack()
	if err != nil {
		return err
	}
	defer s.log.Sync()

	if limit <= 0 {
		limit = s.cfg.Search.DefaultResults
	}

	if contextType != "" {
		text := s.engine.RetrieveContext(ctx, query, search.ContextType(contextType), limit)
		if text == "" {
			fmt.Println("No relevant context found.")
			return nil
		}
		fmt.Println(text)
		return nil
	}

	var hits []vectordb.Hit
	switch collection {
	case "":
		hits = s.engine.Search(ctx, query, limit, school)
	case vectordb.CollectionTimetables:
		hits, err = s.engine.SearchTimetables(ctx, query, school, "", limit)
	case vectordb.CollectionLessons:
		hits, err = s.engine.SearchLessons(ctx, query, school, limit)
	case vectordb.CollectionProps:
		hits, err = s.engine.SearchProps(ctx, query, school, limit)
	case vectordb.CollectionDocuments:
		hits, err = s.engine.SearchDocuments(ctx, query, "", "", limit)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	fmt.Print(search.FormatHits(hits))
	return nil
}
