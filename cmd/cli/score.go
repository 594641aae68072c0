package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/gridrisk/internal/application"
	"github.com/turtacn/gridrisk/internal/application/dto"
	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/internal/infrastructure/tables"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
	"github.com/turtacn/gridrisk/pkg/utils"
)

func newScoreCommand() *cobra.Command {
	var (
		input              string
		tablesPath         string
		asOf               string
		workers            int
		includeNationality bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON file of entity facts",
		Long: `Score reads a document of the form {"entities": [...]} and prints one
result per entity. Relationships must carry related_risk_score; offline
scoring has no snapshot to resolve them from, so an entity with an
unresolved relationship is reported as unavailable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			var req dto.ScoreFactsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return errors.ErrInvalidRequest("input is not a valid facts document").WithCause(err)
			}
			if asOf != "" {
				req.AsOf = asOf
			}
			if verr := utils.ValidateStruct(&req); verr != nil {
				return verr
			}
			at, err := dto.ParseAsOf(req.AsOf, time.Now())
			if err != nil {
				return err
			}

			provider, err := tables.NewProvider(config.ScoringConfig{TablesPath: tablesPath}, logger.NewNoopLogger())
			if err != nil {
				return err
			}

			facts := make([]models.EntityFacts, 0, len(req.Entities))
			for _, e := range req.Entities {
				facts = append(facts, e.ToModel())
			}

			scorer := application.NewBatchScorer(provider,
				service.EngineOptions{IncludeNationality: includeNationality}, workers, nil, nil)
			batch := scorer.Score(context.Background(), facts, at)

			out := dto.BatchScoreResponse{
				BatchID:    batch.BatchID,
				AsOf:       at.Format(time.RFC3339),
				Requested:  len(facts),
				Incomplete: !batch.Complete,
				DurationMS: batch.Duration.Milliseconds(),
				Results:    make([]dto.ProfileDTO, 0, len(batch.Results)),
			}
			for _, r := range batch.Results {
				p := dto.FromResult(r)
				if p.Status == dto.StatusScored {
					out.Scored++
				} else {
					out.Unavailable++
				}
				out.Results = append(out.Results, p)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "facts document to score")
	cmd.Flags().StringVar(&tablesPath, "tables", "", "scoring tables YAML (built-in tables when empty)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date, e.g. 2024-07-01 (now when empty)")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent scoring workers")
	cmd.Flags().BoolVar(&includeNationality, "include-nationality", false, "fold NAT attributes into geography")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
