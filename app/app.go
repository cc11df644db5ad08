package app

import (
	"github.com/sirupsen/logrus"

	"github.com/bloodlink-app/bloodlink-server/app/config"
	"github.com/bloodlink-app/bloodlink-server/app/donation"
	"github.com/bloodlink-app/bloodlink-server/app/donor"
	"github.com/bloodlink-app/bloodlink-server/app/inventory"
	"github.com/bloodlink-app/bloodlink-server/app/notification"
	"github.com/bloodlink-app/bloodlink-server/app/provider"
	"github.com/bloodlink-app/bloodlink-server/app/realtime"
	"github.com/bloodlink-app/bloodlink-server/app/request"
	"github.com/bloodlink-app/bloodlink-server/app/scheduler"
	"github.com/bloodlink-app/bloodlink-server/cache"
	"github.com/bloodlink-app/bloodlink-server/database"
	"github.com/bloodlink-app/bloodlink-server/model"
	"github.com/bloodlink-app/bloodlink-server/mongodatabase"
)

// App our application
type App struct {
	Config *config.Config
	Repos  *model.Repos

	Hub                 *realtime.Hub
	ProviderService     provider.Service
	NotificationService notification.Service
	DonorService        donor.Service
	RequestService      request.Service
	DonationService     donation.Service
	InventoryService    inventory.Service
	Scheduler           *scheduler.Scheduler
}

// NewContext create new request context
func (a *App) NewContext() *Context {
	return &Context{
		Logger: logrus.StandardLogger(),
	}
}

// New create a new app
func New() (app *App, err error) {
	appConf, err := config.InitConfig()
	if err != nil {
		return nil, err
	}

	dbConf, err := database.InitConfig()
	if err != nil {
		return nil, err
	}

	cacheConf, err := cache.InitConfig()
	if err != nil {
		return nil, err
	}

	masterDB, err := database.New(dbConf.Master)
	if err != nil {
		return nil, err
	}

	replicaDB, err := database.New(dbConf.Replica)
	if err != nil {
		return nil, err
	}

	mongoDBConf, err := mongodatabase.InitConfig()
	if err != nil {
		return nil, err
	}

	repos := &model.Repos{
		MasterDB:  masterDB,
		ReplicaDB: replicaDB,
		Cache:     cache.New(cacheConf),
		MongoDB:   mongoDBConf,
	}

	hub := realtime.NewHub(repos.Cache)
	providerService := provider.NewService(repos, appConf)
	notificationService := notification.NewService(repos, appConf, providerService, hub)
	donorService := donor.NewService(repos, appConf)
	requestService := request.NewService(repos, appConf, donorService, notificationService, hub)
	donationService := donation.NewService(repos, appConf, donorService, requestService, notificationService)
	inventoryService := inventory.NewService(repos, appConf, notificationService)

	return &App{
		Config:              appConf,
		Repos:               repos,
		Hub:                 hub,
		ProviderService:     providerService,
		NotificationService: notificationService,
		DonorService:        donorService,
		RequestService:      requestService,
		DonationService:     donationService,
		InventoryService:    inventoryService,
		Scheduler:           scheduler.New(donorService, requestService, inventoryService, notificationService),
	}, nil
}

// Close closes application handles and connections
func (a *App) Close() {
	logrus.Info("Closing Connection to database")

	err := a.Repos.MasterDB.Close()
	if err != nil {
		logrus.Error("unable to close connection to master database", err)
	}
	err = a.Repos.ReplicaDB.Close()
	if err != nil {
		logrus.Error("unable to close connection to replica database", err)
	}
	err = a.Repos.Cache.Close()
	if err != nil {
		logrus.Error("unable to close connection to cache", err)
	}
}
