package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Jobs      *JobHandler
	Rounds    *RoundHandler
	Students  *StudentHandler
	Selection *SelectionHandler
	Templates *TemplateHandler
	Metrics   *MetricsHandler
}

// Register mounts the API routes on group.
func (h Handlers) Register(group *gin.RouterGroup) {
	jobs := group.Group("/jobs")
	jobs.GET("", h.Jobs.List)
	jobs.POST("", h.Jobs.Create)
	jobs.GET("/:id", h.Jobs.Get)

	rounds := group.Group("/rounds")
	rounds.GET("", h.Rounds.List)
	rounds.POST("", h.Rounds.Create)
	rounds.GET("/:id", h.Rounds.Get)
	rounds.PUT("/:id", h.Rounds.Update)
	rounds.PATCH("/:id/status", h.Rounds.SetStatus)
	rounds.GET("/:id/enrollments", h.Rounds.Enrollments)
	rounds.POST("/:id/students", h.Rounds.Enroll)
	rounds.PATCH("/:id/students/:studentId", h.Rounds.SetStudentStatus)
	rounds.POST("/:id/advance", h.Rounds.Advance)
	rounds.POST("/:id/results/send", h.Rounds.SendResults)

	students := group.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)

	selection := group.Group("/selection")
	selection.GET("", h.Selection.Report)
	selection.POST("/export", h.Selection.Export)
	selection.POST("/send", h.Selection.Send)
	group.GET("/export/:token", h.Selection.Download)

	templates := group.Group("/templates")
	templates.GET("", h.Templates.List)
	templates.GET("/:kind", h.Templates.Get)
	templates.PATCH("/:kind", h.Templates.Update)
	templates.PATCH("/:kind/edit-mode", h.Templates.SetEditable)
	templates.POST("/:kind/copy", h.Templates.Copy)
	templates.POST("/:kind/preview", h.Templates.Preview)

	if h.Metrics != nil {
		group.GET("/metrics/summary", h.Metrics.Summary)
	}
}
