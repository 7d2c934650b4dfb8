package uid

import (
	"crypto/sha256"
	"encoding/binary"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates int64 IDs with github.com/bwmarrin/snowflake.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the host
// name, so replicas of the service rarely share a node.
func NewSnowflake() (*Snowflake, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "skillport"
	}
	sum := sha256.Sum256([]byte(host))
	nodeID := int64(binary.BigEndian.Uint16(sum[:2])) % (1 << snowflake.NodeBits)

	return NewSnowflakeNode(nodeID)
}

// NewSnowflakeNode creates a generator pinned to nodeID.
func NewSnowflakeNode(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Snowflake{node: node}, nil
}

// Generate returns the next ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
