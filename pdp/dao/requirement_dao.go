package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const (
	LabelOperation = "OPERATION"
	LabelTokenTier = "TOKEN_TIER"
	RelRequires    = "REQUIRES"
)

// Tier declaration order lives on the relationship so one tier node can be
// shared by several operations.
const requirementQuery = `
MATCH (o:` + LabelOperation + `)-[r:` + RelRequires + `]->(t:` + LabelTokenTier + `)
RETURN o.name AS operation, t.name AS tier, t.tokenId AS tokenId, r.minimumQuantity AS minimumQuantity
ORDER BY o.name, r.order
`

type RequirementDAO struct {
	Driver neo4j.DriverWithContext
}

func NewRequirementDAO(driver neo4j.DriverWithContext) *RequirementDAO {
	return &RequirementDAO{Driver: driver}
}

// LoadRequirements reads the whole requirement table once, at startup.
func (dao *RequirementDAO) LoadRequirements(ctx context.Context) ([]model.TokenRequirement, error) {
	start := time.Now()
	session := dao.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx, requirementQuery, nil)
		if err != nil {
			return nil, err
		}
		var requirements []model.TokenRequirement
		for records.Next(ctx) {
			requirement, err := mapRequirementRecord(records.Record())
			if err != nil {
				return nil, err
			}
			requirements = append(requirements, requirement)
		}
		return requirements, records.Err()
	})
	if err != nil {
		logger.Error("Failed to load token requirements", zap.Error(err))
		return nil, fmt.Errorf("failed to load token requirements: %w", err)
	}

	requirements, _ := result.([]model.TokenRequirement)
	logger.Info("Token requirements loaded from Neo4j",
		zap.Int("count", len(requirements)),
		zap.Duration("duration", time.Since(start)))
	return requirements, nil
}

func mapRequirementRecord(record *neo4j.Record) (model.TokenRequirement, error) {
	var requirement model.TokenRequirement

	operation, _ := get(record, "operation").(string)
	if operation == "" {
		return requirement, fmt.Errorf("requirement record without operation name")
	}
	tier, _ := get(record, "tier").(string)

	var tokenID string
	switch v := get(record, "tokenId").(type) {
	case string:
		tokenID = v
	case int64:
		tokenID = fmt.Sprintf("%d", v)
	default:
		return requirement, fmt.Errorf("%s/%s: unsupported tokenId %T", operation, tier, v)
	}
	id, ok := model.ParseTokenID(tokenID)
	if !ok {
		return requirement, fmt.Errorf("%s/%s: tokenId %q is not a uint256", operation, tier, tokenID)
	}

	minimum, ok := get(record, "minimumQuantity").(int64)
	if !ok || minimum < 1 {
		return requirement, fmt.Errorf("%s/%s: minimumQuantity must be a positive integer", operation, tier)
	}

	return model.TokenRequirement{
		Operation:       operation,
		Tier:            tier,
		TokenID:         id,
		MinimumQuantity: uint64(minimum),
	}, nil
}

func get(record *neo4j.Record, key string) any {
	value, _ := record.Get(key)
	return value
}
