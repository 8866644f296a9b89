package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/quickbites/dispatch/internal/server/http/handlers"
	"github.com/quickbites/dispatch/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.DispatchFacade, control handlers.AssignmentControl, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	driverHandler := handlers.NewDriverHandler(facade)
	assignmentHandler := handlers.NewAssignmentHandler(control)

	orders := engine.Group("/orders")
	orders.POST("", orderHandler.Place)
	orders.GET("/ready-for-pickup", orderHandler.ReadyForPickup)
	orders.GET("/:orderId", orderHandler.Get)
	orders.PUT("/update-status/:orderId", orderHandler.UpdateStatus)
	orders.PUT("/cancel/:orderId", orderHandler.Cancel)
	orders.PUT("/:orderId/driver-assignment", orderHandler.DriverAssignment)
	orders.PUT("/:orderId/driver-location", orderHandler.DriverLocation)

	drivers := engine.Group("/drivers")
	drivers.POST("", driverHandler.Register)
	drivers.GET("/:driverId", driverHandler.Get)
	drivers.PUT("/:driverId/availability", driverHandler.Availability)
	drivers.PUT("/:driverId/location", driverHandler.Location)
	drivers.POST("/:driverId/accept-order/:orderId", driverHandler.Accept)
	drivers.POST("/:driverId/reject-order/:orderId", driverHandler.Reject)
	drivers.POST("/:driverId/complete-order/:orderId", driverHandler.Complete)

	assignment := engine.Group("/assignment")
	assignment.POST("/start", assignmentHandler.Start)
	assignment.POST("/stop", assignmentHandler.Stop)
	assignment.POST("/trigger", assignmentHandler.Trigger)

	return engine
}
