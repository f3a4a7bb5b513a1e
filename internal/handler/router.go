package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/campus-api/internal/middleware"
	"github.com/campushq/campus-api/internal/models"
	"github.com/campushq/campus-api/internal/service"
)

// Router bundles every handler and registers the /api/v1 route tree.
type Router struct {
	Auth       *AuthHandler
	Schedule   *ScheduleHandler
	Class      *ClassHandler
	Department *DepartmentHandler
	Course     *CourseHandler
	Query      *QueryHandler
	Profile    *ProfileHandler
	Resource   *ResourceHandler
	Push       *PushHandler

	AuthService *service.AuthService
	Metrics     *service.MetricsService

	// GeneratorEnabled gates the automated batch scheduler endpoint.
	GeneratorEnabled bool
}

// Register mounts all routes on the engine. Path spellings are kept as the
// clients already use them, including the historical "mannual-schedule".
func (r *Router) Register(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(r.Metrics.Handler()))

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Metrics(r.Metrics))

	auth := middleware.JWT(r.AuthService)

	// Role-scoped logins. The path names the role; payloads never carry it.
	logins := map[string]models.UserRole{
		"supreme":     models.RoleSupreme,
		"principal":   models.RolePrincipal,
		"coordinator": models.RoleCoordinator,
		"faculty":     models.RoleFaculty,
		"student":     models.RoleStudent,
	}
	for path, role := range logins {
		v1.POST("/"+path+"/login", middleware.Tenant(), r.Auth.Login(role))
	}

	general := v1.Group("/general")
	{
		general.POST("/validate-token", r.Auth.Validate)
		general.POST("/refresh-token", r.Auth.Refresh)
		general.POST("/logout", auth, r.Auth.Logout)
	}

	manual := v1.Group("/mannual-schedule", auth, middleware.RBAC(models.RoleCoordinator, models.RolePrincipal))
	{
		manual.GET("/subjects", r.Schedule.Subjects)
		manual.GET("/rooms", r.Schedule.Rooms)
		manual.POST("/init", r.Schedule.Init)
		manual.POST("/assign", r.Schedule.Assign)
	}

	schedule := v1.Group("/schedule", auth)
	{
		schedule.GET("/faculty", middleware.RBAC(models.RoleCoordinator, models.RolePrincipal), r.Schedule.Faculty)
		if r.GeneratorEnabled {
			schedule.POST("/generate", middleware.RBAC(models.RoleCoordinator, models.RolePrincipal), r.Schedule.Generate)
		}
		schedule.GET("/latest", r.Schedule.Latest)
		schedule.GET("/latest/export", r.Schedule.Export)
	}

	student := v1.Group("/student/classes", auth, middleware.RBAC(models.RoleStudent))
	{
		student.GET("/upcoming-classes/:studentId/:n", r.Class.Upcoming("studentId"))
		student.GET("/past-classes/:studentId", r.Class.Past("studentId"))
	}

	faculty := v1.Group("/faculty/classes", auth, middleware.RBAC(models.RoleFaculty))
	{
		faculty.GET("/upcoming-classes/:facultyId/:n", r.Class.Upcoming("facultyId"))
		faculty.GET("/past-classes/:facultyId", r.Class.Past("facultyId"))
	}

	v1.GET("/classes/:class_id", auth, r.Class.Detail)

	departments := v1.Group("/departments", auth, middleware.Tenant())
	{
		departments.GET("", r.Department.List)
		departments.GET("/:id", r.Department.Get)
		departments.GET("/:id/sections", r.Department.Sections)

		writes := departments.Group("", middleware.RBAC(models.RoleCoordinator, models.RolePrincipal))
		{
			writes.POST("", r.Department.Create)
			writes.PUT("/:id/head", r.Department.AssignHead)
			writes.POST("/:id/sections", r.Department.CreateSection)
		}
	}

	courses := v1.Group("/courses", auth)
	{
		courses.GET("", r.Course.List)
		courses.GET("/:id", r.Course.Get)
		courses.GET("/:id/syllabus", r.Course.Syllabus)
		courses.GET("/:id/resources", r.Resource.List)
		courses.POST("/:id/resources", middleware.RBAC(models.RoleFaculty, models.RoleCoordinator), r.Resource.Upload)
	}

	resources := v1.Group("/resources")
	{
		// Download authenticates with the signed token alone.
		resources.GET("/download", r.Resource.Download)
		resources.GET("/:id/link", auth, r.Resource.Link)
		resources.DELETE("/:id", auth, middleware.RBAC(models.RoleFaculty, models.RoleCoordinator), r.Resource.Delete)
	}

	queries := v1.Group("/queries", auth, middleware.RBAC(models.RoleStudent, models.RoleFaculty))
	{
		queries.POST("", r.Query.Open)
		queries.GET("", r.Query.List)
		queries.GET("/:id", r.Query.Thread)
		queries.POST("/:id/messages", r.Query.Reply)
		queries.POST("/:id/resolve", r.Query.Resolve)
		queries.DELETE("/:id", r.Query.Delete)
	}

	profile := v1.Group("/profile", auth)
	{
		profile.GET("", r.Profile.Get)
		profile.PUT("", r.Profile.Update)
		profile.GET("/push-subscriptions", r.Profile.Subscriptions)
		profile.POST("/push-subscriptions", r.Profile.Subscribe)
		profile.DELETE("/push-subscriptions", r.Profile.Unsubscribe)
	}

	v1.POST("/push/notifications", auth, middleware.RBAC(models.RolePrincipal), r.Push.Enqueue)
}
