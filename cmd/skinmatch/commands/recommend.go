package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ashureev/skinmatch/internal/recommend"
)

func newRecommendCommand(opts *options) *cobra.Command {
	var (
		q       recommend.Query
		asJSON  bool
		topK    int
		problem []string
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Run one stateless recommendation query",
		Example: `  skinmatch recommend --category toner --skin berminyak --problem jerawat
  skinmatch recommend --category serum --ingredient niacinamide --fragrance-free --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, rec, _, err := opts.recommender(cmd)
			if err != nil {
				return err
			}
			q.Problems = problem
			q.PageSize = topK
			items := rec.Recommend(q)

			out := cmd.OutOrStdout()
			if asJSON {
				if items == nil {
					items = []recommend.Recommendation{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "Tidak ada produk yang cocok.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUK\tSKOR\tCATATAN")
			for _, it := range items {
				fmt.Fprintf(w, "%s\t%d\t%s\n", it.FullName(), it.SafetyScore, strings.Join(it.Notes, "; "))
			}
			return w.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.Category, "category", "", "product category (required)")
	f.StringVar(&q.SkinType, "skin", "", "skin type, e.g. berminyak or sensitif")
	f.StringSliceVar(&problem, "problem", nil, "skin problem (repeatable)")
	f.StringSliceVar(&q.Ingredients, "ingredient", nil, "required ingredient (repeatable)")
	f.StringVar(&q.Brand, "brand", "", "brand substring")
	f.BoolVar(&q.Prefs.AlcoholFree, "alcohol-free", false, "require alcohol-free")
	f.BoolVar(&q.Prefs.FragranceFree, "fragrance-free", false, "require fragrance-free")
	f.BoolVar(&q.Prefs.NonComedogenic, "non-comedogenic", false, "require non-comedogenic")
	f.IntVar(&topK, "top-k", 0, "maximum results (default from RECOMMEND_TOP_K)")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
