package app

import (
	"fmt"
	"log"
	"os"

	"github.com/academic-system/records-api/api"
	"github.com/academic-system/records-api/config"
	"github.com/academic-system/records-api/database"
	"github.com/academic-system/records-api/router"
	"github.com/academic-system/records-api/services"
	"github.com/academic-system/records-api/services/cron"
	"gorm.io/gorm"
)

// SetupAndRunServer boots the whole service: config, both database
// connections, migrations, seeding, cron jobs, routes.
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Primary GORM connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run migrations")
		return err
	}

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		return fmt.Errorf("failed to get database connection")
	}

	// Seed the admin account (and demo catalog when requested)
	if err := database.NewSeeder(db).SeedAll(); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// Secondary raw-SQL connection for reporting queries
	reportStore, err := database.Start()
	if err != nil {
		log.Printf("Warning: reporting store unavailable: %v. Admin reports will be disabled.", err)
		reportStore = nil
	}

	// Background jobs
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		notificationService := services.NewNotificationService(db)
		enrollmentService := services.NewEnrollmentService(db, notificationService)
		cronManager = cron.NewCronManager(db, enrollmentService)
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if reportStore != nil {
			reportStore.Close()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store, reportStore)

	return server.Run()
}
