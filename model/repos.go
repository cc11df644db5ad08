package model

import (
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// Repos container to hold handles for cache / db repos
type Repos struct {
	MasterDB  *database.Database
	ReplicaDB *database.Database
	Cache     *cache.Cache
	MongoDB   *mongodatabase.DBConfig
}
