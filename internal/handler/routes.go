package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edulane/educenter-api/internal/middleware"
	"github.com/edulane/educenter-api/internal/models"
	"github.com/edulane/educenter-api/internal/service"
)

// Handlers groups every HTTP handler mounted by the API.
type Handlers struct {
	Auth        *AuthHandler
	TimeSlots   *TimeSlotHandler
	Teachers    *TeacherHandler
	Rooms       *RoomHandler
	Students    *StudentHandler
	Classes     *ClassHandler
	Sessions    *SessionHandler
	Enrollments *EnrollmentHandler
	Payments    *PaymentHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API route tree under the given prefix.
// Writes are restricted to admins; attendance and session status changes are
// open to teachers as well.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(auth))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.POST("/auth/change-password", h.Auth.ChangePassword)
	protected.GET("/auth/me", h.Auth.Me)

	admin := protected.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	staff := protected.Group("")
	staff.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))

	protected.GET("/time-slots", h.TimeSlots.List)
	protected.GET("/time-slots/:id", h.TimeSlots.Get)
	admin.POST("/time-slots", h.TimeSlots.Create)
	admin.PUT("/time-slots/:id", h.TimeSlots.Update)
	admin.DELETE("/time-slots/:id", h.TimeSlots.Deactivate)

	protected.GET("/teachers", h.Teachers.List)
	protected.GET("/teachers/:id", h.Teachers.Get)
	protected.GET("/teachers/:id/free-busy", h.Teachers.FreeBusy)
	protected.GET("/teachers/:id/grid", h.Teachers.Grid)
	admin.POST("/teachers", h.Teachers.Create)
	admin.PUT("/teachers/:id", h.Teachers.Update)
	admin.DELETE("/teachers/:id", h.Teachers.Deactivate)

	protected.GET("/rooms", h.Rooms.List)
	protected.GET("/rooms/:id", h.Rooms.Get)
	protected.GET("/rooms/:id/free-busy", h.Rooms.FreeBusy)
	protected.GET("/rooms/:id/grid", h.Rooms.Grid)
	admin.POST("/rooms", h.Rooms.Create)
	admin.PUT("/rooms/:id", h.Rooms.Update)
	admin.DELETE("/rooms/:id", h.Rooms.Deactivate)

	staff.GET("/students", h.Students.List)
	staff.GET("/students/:id", h.Students.Get)
	staff.GET("/students/:id/enrollments", h.Students.Enrollments)
	admin.POST("/students", h.Students.Create)
	admin.PUT("/students/:id", h.Students.Update)
	admin.DELETE("/students/:id", h.Students.Deactivate)

	protected.GET("/classes", h.Classes.List)
	protected.GET("/classes/:id", h.Classes.Get)
	protected.GET("/classes/:id/sessions", h.Classes.Sessions)
	protected.GET("/classes/:id/grid", h.Classes.Grid)
	staff.GET("/classes/:id/roster", h.Enrollments.Roster)
	staff.GET("/classes/:id/attendance-summary", h.Enrollments.AttendanceSummary)
	admin.POST("/classes", h.Classes.Create)
	admin.PUT("/classes/:id", h.Classes.Update)
	admin.PATCH("/classes/:id/status", h.Classes.ChangeStatus)

	protected.GET("/sessions/:id", h.Sessions.Get)
	staff.PATCH("/sessions/:id/status", h.Sessions.ChangeStatus)
	staff.POST("/sessions/:id/attendance", h.Sessions.MarkAttendance)
	staff.GET("/sessions/:id/attendance", h.Sessions.Attendance)

	admin.POST("/enrollments", h.Enrollments.Enroll)
	admin.DELETE("/enrollments/:id", h.Enrollments.Withdraw)

	admin.GET("/payments", h.Payments.List)
	admin.GET("/payments/:id", h.Payments.Get)
	admin.POST("/payments", h.Payments.Create)
	admin.POST("/payments/:id/pay", h.Payments.MarkPaid)
	admin.POST("/payments/:id/void", h.Payments.Void)

	if h.Exports != nil {
		staff.POST("/exports", h.Exports.Request)
		staff.GET("/exports/:id", h.Exports.Status)
		api.GET("/exports/download/:token", h.Exports.Download)
	}
}
