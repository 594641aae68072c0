// Package search indexes scored profiles into Elasticsearch for analyst search.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/turtacn/gridrisk/internal/config"
	"github.com/turtacn/gridrisk/internal/domain/models"
	"github.com/turtacn/gridrisk/internal/domain/service"
	"github.com/turtacn/gridrisk/pkg/constants"
	"github.com/turtacn/gridrisk/pkg/errors"
	"github.com/turtacn/gridrisk/pkg/logger"
)

// ProfileIndexer writes profiles to an Elasticsearch index, one document per
// entity, replacing the previous version.
type ProfileIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

var _ service.ProfilePublisher = (*ProfileIndexer)(nil)

// profileDocument is the indexed shape; flat fields keep analyst queries simple.
type profileDocument struct {
	EntityID          string    `json:"entity_id"`
	IsPEP             bool      `json:"is_pep"`
	PEPRoles          []string  `json:"pep_roles"`
	PEPPriority       int       `json:"pep_priority"`
	EventScore        float64   `json:"event_score"`
	GeographicScore   float64   `json:"geographic_score"`
	RelationshipScore float64   `json:"relationship_score"`
	FinalScore        float64   `json:"final_score"`
	SeverityTier      string    `json:"severity_tier"`
	AppliedFloor      string    `json:"applied_floor,omitempty"`
	ScoredAt          time.Time `json:"scored_at"`
}

// NewProfileIndexer creates the Elasticsearch client.
func NewProfileIndexer(cfg config.SearchConfig, log logger.Logger) (*ProfileIndexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: http.DefaultTransport,
	})
	if err != nil {
		return nil, errors.ErrInvalidConfiguration("failed to create Elasticsearch client").WithCause(err)
	}
	index := cfg.Index
	if index == "" {
		index = constants.DefaultProfileIndex
	}
	return &ProfileIndexer{
		client: client,
		index:  index,
		logger: log.WithComponent("ProfileIndexer"),
	}, nil
}

func (i *ProfileIndexer) Name() string { return "elasticsearch" }

// HealthCheck verifies the cluster answers.
func (i *ProfileIndexer) HealthCheck(ctx context.Context) error {
	res, err := i.client.Info(i.client.Info.WithContext(ctx))
	if err != nil {
		return errors.ErrTemporarilyUnavailable("elasticsearch unreachable").WithCause(err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.ErrTemporarilyUnavailable(fmt.Sprintf("elasticsearch error: %s", res.String()))
	}
	return nil
}

// Publish indexes the profiles through one bulk request.
func (i *ProfileIndexer) Publish(ctx context.Context, profiles []*models.EntityRiskProfile) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	count := 0
	for _, p := range profiles {
		if p == nil {
			continue
		}
		meta := map[string]map[string]string{"index": {"_id": p.EntityID}}
		if err := enc.Encode(meta); err != nil {
			return errors.ErrPublish(i.Name(), err)
		}
		if err := enc.Encode(toDocument(p)); err != nil {
			return errors.ErrPublish(i.Name(), err)
		}
		count++
	}
	if count == 0 {
		return nil
	}

	res, err := i.client.Bulk(&buf,
		i.client.Bulk.WithContext(ctx),
		i.client.Bulk.WithIndex(i.index),
	)
	if err != nil {
		i.logger.Error(ctx, "bulk index request failed", err, logger.Fields{"profiles": count})
		return errors.ErrPublish(i.Name(), err)
	}
	defer res.Body.Close()

	if res.IsError() {
		err := fmt.Errorf("elasticsearch error: %s", res.String())
		i.logger.Error(ctx, "bulk index rejected", err)
		return errors.ErrPublish(i.Name(), err)
	}

	var body struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return errors.ErrPublish(i.Name(), fmt.Errorf("error parsing bulk response: %w", err))
	}
	if body.Errors {
		failed := 0
		for _, item := range body.Items {
			for _, result := range item {
				if result.Status >= 300 {
					failed++
				}
			}
		}
		err := fmt.Errorf("%d of %d documents failed to index", failed, count)
		i.logger.Warn(ctx, "bulk index partially failed", logger.Fields{"failed": failed, "profiles": count})
		return errors.ErrPublish(i.Name(), err)
	}
	return nil
}

func toDocument(p *models.EntityRiskProfile) profileDocument {
	roles := p.PEP.Roles
	if roles == nil {
		roles = []string{}
	}
	return profileDocument{
		EntityID:          p.EntityID,
		IsPEP:             p.PEP.IsPEP,
		PEPRoles:          roles,
		PEPPriority:       p.PEP.MaxPriority,
		EventScore:        p.EventScore,
		GeographicScore:   p.GeographicScore,
		RelationshipScore: p.RelationshipScore,
		FinalScore:        p.FinalScore,
		SeverityTier:      string(p.SeverityTier),
		AppliedFloor:      string(p.AppliedFloor),
		ScoredAt:          p.ScoredAt,
	}
}
