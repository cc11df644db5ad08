package inventoryapi

import (
	"github.com/bloodlink-app/bloodlink-server/api/common"
	"github.com/bloodlink-app/bloodlink-server/app"
	"github.com/bloodlink-app/bloodlink-server/cache"
	repo "github.com/bloodlink-app/bloodlink-server/model"
)

type api struct {
	config *common.Config
	cache  *cache.Cache
	App    *app.App
}

// New creates a new api
func New(conf *common.Config, repos *repo.Repos, app *app.App) *api {
	return &api{
		config: conf,
		cache:  repos.Cache,
		App:    app,
	}
}
