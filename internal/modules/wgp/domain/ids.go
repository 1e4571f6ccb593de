package domain

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeID   int64 = 1
)

// SetNodeID sets the snowflake node used for generated ids.
// Must be called before the first id is generated; later calls have no effect.
func SetNodeID(id int64) {
	nodeID = id
}

func initSnowflake() {
	var err error
	node, err = snowflake.NewNode(nodeID)
	if err != nil {
		panic(err)
	}
}

// NewGameID generates a unique game id
func NewGameID() string {
	nodeOnce.Do(initSnowflake)
	return node.Generate().String()
}

// NewRecordID generates a unique id for persisted records
func NewRecordID() string {
	nodeOnce.Do(initSnowflake)
	return node.Generate().String()
}
