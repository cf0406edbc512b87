package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
)

var (
	edgesBooks      []string
	edgesGenerator  string
	edgesSimilarity string
	edgesEnrichment string
	edgesMinScore   float64
	edgesTopN       int
	edgesMinShared  int
	edgesWorkers    int
	edgesJSON       bool
)

var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Compute chapter edges",
}

var edgesComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Link chapters of ingested books and record the run",
	Long: `Runs the retrieval pipeline over the chapters of the given books.

Candidate generators:
  tfidf_token - chapters sharing salient TF-IDF terms
  keyword     - chapters sharing enrichment keywords

Similarities:
  tfidf           - cosine similarity of TF-IDF vectors (0-1)
  keyword_overlap - number of shared keywords

Flags left unset fall back to the retrieval settings. The run records the
enrichment version the books were ingested with; books ingested with
different versions cannot be linked in one run.`,
	Args: cobra.NoArgs,
	RunE: runEdgesCompute,
}

func init() {
	f := edgesComputeCmd.Flags()
	f.StringSliceVarP(&edgesBooks, "books", "b", nil, "comma-separated book ids (required)")
	f.StringVar(&edgesGenerator, "generator", "", "candidate generator")
	f.StringVar(&edgesSimilarity, "similarity", "", "similarity scorer")
	f.StringVar(&edgesEnrichment, "enrichment", "", "require books enriched with this version")
	f.Float64Var(&edgesMinScore, "min-score", 0, "inclusive minimum edge score")
	f.IntVar(&edgesTopN, "top-n", 0, "salient terms kept per chapter")
	f.IntVar(&edgesMinShared, "min-shared", 0, "shared salient terms required for a candidate")
	f.IntVar(&edgesWorkers, "workers", 0, "parallel chapter workers")
	f.BoolVar(&edgesJSON, "json", false, "output run and edges as JSON")
	_ = edgesComputeCmd.MarkFlagRequired("books")

	edgesCmd.AddCommand(edgesComputeCmd)
	rootCmd.AddCommand(edgesCmd)
}

func runEdgesCompute(cmd *cobra.Command, _ []string) error {
	if edgeService == nil {
		return errors.New("edge service not configured")
	}

	req := driving.ComputeEdgesRequest{
		BookIDs:           edgesBooks,
		Generator:         domain.GeneratorKind(edgesGenerator),
		Similarity:        domain.SimilarityKind(edgesSimilarity),
		EnrichmentVersion: domain.EnrichmentVersion(edgesEnrichment),
		Workers:           edgesWorkers,
	}
	flags := cmd.Flags()
	if flags.Changed("min-score") {
		minScore := edgesMinScore
		req.MinScore = &minScore
	}
	if flags.Changed("top-n") {
		topN := edgesTopN
		req.TopN = &topN
	}
	if flags.Changed("min-shared") {
		minShared := edgesMinShared
		req.MinSharedTokens = &minShared
	}

	run, edges, err := edgeService.Compute(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("compute failed: %w", err)
	}

	if edgesJSON {
		return printJSON(cmd, struct {
			Run   *domain.Run   `json:"run"`
			Edges []domain.Edge `json:"edges"`
		}{run, nonNilEdges(edges)})
	}

	cmd.Printf("Run %s: %d edges (%s/%s, min_score %g)\n",
		run.ID, run.EdgeCount, run.Config.Generator, run.Config.Similarity, run.Config.MinScore)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func nonNilEdges(edges []domain.Edge) []domain.Edge {
	if edges == nil {
		return []domain.Edge{}
	}
	return edges
}
