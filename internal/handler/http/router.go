package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/time/rate"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	// ClockRateLimit is requests per second per user on clock-in/out.
	ClockRateLimit float64
	ClockRateBurst int
}

type Handlers struct {
	Attendance   AttendanceHandler
	Overtime     OvertimeHandler
	Leave        LeaveHandler
	Payroll      PayrollHandler
	Notification NotificationHandler
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Authenticated by a stream token in the query string
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Use(middleware.RequirePermission(user.PermissionAttendanceClock))
					r.Use(middleware.RateLimitByUser(rate.Limit(opts.ClockRateLimit), opts.ClockRateBurst))
					r.Post("/clock-in", h.Attendance.ClockIn)
					r.Post("/clock-out", h.Attendance.ClockOut)
				})
				r.With(middleware.RequireEmployee).Get("/today", h.Attendance.GetToday)
				r.With(middleware.RequirePermission(user.PermissionOvertimeApprove)).
					Post("/{id}/overtime/approve", h.Attendance.ApproveOvertime)
			})

			r.Route("/overtime/rules", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionOvertimeManageRules))
				r.Get("/", h.Overtime.ListRules)
				r.Post("/", h.Overtime.CreateRule)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.With(middleware.RequireEmployee, middleware.RequirePermission(user.PermissionLeaveCreate)).
						Post("/", h.Leave.CreateRequest)
					r.With(middleware.RequireEmployee).Post("/{id}/cancel", h.Leave.CancelRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.With(middleware.RequireEmployee).Get("/balances/my", h.Leave.GetMyBalances)

				r.Route("/accruals", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionLeaveAccrue))
					r.Post("/", h.Leave.TriggerAccrual)
					r.Get("/{id}", h.Leave.GetAccrualRun)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/payslips/my", func(r chi.Router) {
					r.Use(middleware.RequireEmployee)
					r.Use(middleware.RequirePermission(user.PermissionPayslipViewOwn))
					r.Get("/", h.Payroll.GetMyPayslips)
					r.Get("/{id}", h.Payroll.GetMyPayslip)
				})

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollManage))
					r.Post("/structures", h.Payroll.CreateStructure)
					r.Post("/salaries", h.Payroll.AssignSalary)
					r.Get("/preview/{employeeID}", h.Payroll.PreviewPayslip)

					r.Route("/runs", func(r chi.Router) {
						r.Post("/", h.Payroll.CreateRun)
						r.Route("/{id}", func(r chi.Router) {
							r.Get("/", h.Payroll.GetRun)
							r.Delete("/", h.Payroll.DeleteRun)
							r.Post("/process", h.Payroll.ProcessRun)
							r.Post("/approve", h.Payroll.ApproveRun)
							r.Post("/pay", h.Payroll.MarkAsPaid)
							r.Get("/payslips", h.Payroll.ListPayslips)
							r.Get("/export", h.Payroll.ExportRun)
						})
					})
				})
			})

			r.Get("/notifications", h.Notification.List)
			r.Get("/notifications/stream-token", h.Notification.GetStreamToken)
		})
	})
	return r
}
