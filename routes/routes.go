package routes

import (
	"talentdesk/activity"
	"talentdesk/config"
	controller "talentdesk/controllers"
	"talentdesk/middleware"
	"talentdesk/repository"
	"talentdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

// Deps is everything the routes need.
type Deps struct {
	Repos    *repository.Repositories
	Hub      *activity.Hub
	Recorder *activity.Recorder
	Health   controller.HealthSource
	Config   config.Config
}

const accessLogFormat = "[${time}] ${status} - ${latency} ${method} ${path}\n"

func SetupAPIRoutes(app *fiber.App, d Deps) {
	paging := controller.Paging{Default: d.Config.DefaultPageSize, Max: d.Config.MaxPageSize}
	repos := d.Repos

	crmStores := controller.CRMStores{
		Companies: repos.Companies,
		Contacts:  repos.Contacts,
		Leads:     repos.Leads,
		Deals:     repos.Deals,
		Tasks:     repos.Tasks,
	}
	crmControllers := controller.NewCRMControllers(crmStores, paging, d.Recorder, utils.Logger("crm"), nil)
	candidateController := controller.NewCandidateController(repos.Candidates, repos.Fields, paging, d.Recorder, utils.Logger("candidates"))
	batchController := controller.NewBatchController(repos.Batches, paging, d.Recorder, utils.Logger("batches"))
	fieldController := controller.NewFieldController(repos.Fields, repos.Candidates, d.Recorder, utils.Logger("fields"))
	settingController := controller.NewSettingController(repos.Settings, controller.KeyCipher(d.Config.EncryptionKey), d.Recorder, utils.Logger("settings"))
	activityController := controller.NewActivityController(repos.Activity, d.Hub, paging, utils.Logger("activity"))
	ticketController := controller.NewTicketController(repos.Tickets, paging, d.Recorder, utils.Logger("support"))
	dashboardController := controller.NewDashboardController(repos.Stats, utils.Logger("dashboard"))
	viewController := controller.NewViewController(crmControllers, candidateController)

	// The activity socket authenticates with ?token= since browsers cannot
	// set headers on the upgrade request.
	app.Get("/api/v1/ws/activity-logs", middleware.Protected(), activityController.Upgrade,
		websocket.New(activityController.Stream))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), middleware.RateLimiter(), logger.New(logger.Config{
		Format: accessLogFormat,
	}))

	// Dashboard routes
	api.Get("/dashboard/stats", dashboardController.GetDashboardStats)

	// CRM routes
	crm := api.Group("/crm")
	crmControllers.Companies.Register(crm.Group("/companies"))
	crmControllers.Contacts.Register(crm.Group("/contacts"))
	crmControllers.Leads.Register(crm.Group("/leads"))
	crmControllers.Deals.Register(crm.Group("/deals"))
	crmControllers.Tasks.Register(crm.Group("/tasks"))

	// Recruitment routes
	candidateController.Register(api.Group("/candidates"))
	batchController.Register(api.Group("/batches"))

	// Settings routes
	fieldsGroup := api.Group("/settings/fields")
	fieldsGroup.Get("/:entity_type", fieldController.List)
	fieldsGroup.Get("/:entity_type/form", fieldController.Form)
	fieldsGroup.Post("/", fieldController.Create)
	fieldsGroup.Put("/:id", fieldController.Update)
	fieldsGroup.Delete("/:id", fieldController.Delete)

	system := api.Group("/settings/system")
	system.Get("/", settingController.List)
	system.Post("/", settingController.Create)
	system.Patch("/:id", settingController.Patch)

	// Activity log routes
	logs := api.Group("/activity-logs")
	logs.Get("/", activityController.List)
	logs.Get("/me", activityController.Mine)
	logs.Get("/:id/diff", activityController.Diff)

	// Support widget and table views
	ticketController.Register(api.Group("/support/tickets"))
	api.Get("/views/:entity", viewController.Render)

	utils.LogEvent("routes_initialized", map[string]interface{}{"prefix": "/api/v1"})
}

func SetupRoutes(app *fiber.App, d Deps) {
	healthController := controller.NewHealthController(d.Health, d.Config.AppVersion)

	// Unversioned endpoints polled by every open tab
	app.Get("/health", healthController.Health)
	app.Get("/version.json", healthController.Version)

	SetupAPIRoutes(app, d)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "The requested resource was not found", nil)
	})
}
