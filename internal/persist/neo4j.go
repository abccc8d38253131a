package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Neo4jConfig configures the optional durable mirror (spec SPEC_FULL.md
// DOMAIN STACK; grounded on the teacher's knowledge.Neo4jConfig).
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4jMirror writes a best-effort copy of each snapshot into Neo4j: one
// node per hyperedge, one DERIVED_FROM relationship per premise reference.
type Neo4jMirror struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jMirror connects to Neo4j and verifies connectivity.
func NewNeo4jMirror(cfg Neo4jConfig) (*Neo4jMirror, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4jconfig.Config) {
			c.MaxConnectionPoolSize = 20
			c.ConnectionAcquisitionTimeout = cfg.Timeout
			c.SocketConnectTimeout = cfg.Timeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Neo4jMirror{driver: driver, database: cfg.Database}, nil
}

// Close releases the driver's connection pool.
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

// MirrorDocument writes every hyperedge and premise link in doc into Neo4j
// as a best-effort durable copy for external inspection.
func (m *Neo4jMirror) MirrorDocument(ctx context.Context, doc Document) error {
	session := m.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, edge := range doc.Hypergraph {
			if _, err := tx.Run(ctx, `
				MERGE (e:Hyperedge {id: $id})
				SET e.type = $type, e.args = $args
			`, map[string]any{"id": edge.ID, "type": edge.Type, "args": edge.Args}); err != nil {
				return nil, fmt.Errorf("mirror hyperedge %s: %w", edge.ID, err)
			}
			for _, belief := range edge.Beliefs {
				for _, premise := range belief.Premises {
					if _, err := tx.Run(ctx, `
						MERGE (p:Hyperedge {id: $premise})
						MERGE (e:Hyperedge {id: $id})
						MERGE (e)-[:DERIVED_FROM]->(p)
					`, map[string]any{"id": edge.ID, "premise": premise}); err != nil {
						return nil, fmt.Errorf("mirror premise link %s <- %s: %w", edge.ID, premise, err)
					}
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("mirror snapshot: %w", err)
	}
	return nil
}
