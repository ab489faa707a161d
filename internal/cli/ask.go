package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/albumatlas/internal/models"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// asker answers a composed query
type asker interface {
	Ask(ctx context.Context, query string) (*models.Recommendation, error)
}

var (
	askJSON    bool
	askContext bool
)

// buildAsker is replaced in tests
var buildAsker = func(ctx context.Context) (asker, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	p, err := newPipeline(ctx, cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return p.recommender, p.Close, nil
}

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask for a recommendation from the command line",
	Long: `Runs the recommendation pipeline once for the given query and prints
the answer. Arguments are joined with spaces into a single query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the recommendation as JSON")
	askCmd.Flags().BoolVar(&askContext, "show-context", false, "print the matched album descriptions before the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errors.New("query must not be empty")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, closeFn, err := buildAsker(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()

	recommendation, err := a.Ask(ctx, query)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if askJSON {
		data, err := json.MarshalIndent(models.RecommendResponse{
			Success:        true,
			Query:          recommendation.Query,
			Recommendation: recommendation.Answer,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal recommendation: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if askContext {
		fmt.Fprintln(out, "Context:")
		fmt.Fprintln(out, recommendation.Context)
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, recommendation.Answer)
	return nil
}
