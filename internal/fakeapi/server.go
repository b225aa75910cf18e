// Package fakeapi 是内存中的 TimeTrak 接口实现，供测试和 cmd/stub 使用。
// 它只实现客户端调用到的端点，业务规则尽量贴近真实服务端
package fakeapi

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/timetrak/client/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	JWTSecret     string
	AccessTTL     time.Duration
	AdminUsername string
	AdminPassword string
	CompanyName   string
	// PublicURL 用于拼接邀请链接
	PublicURL string
	// BareArrays 为 true 时列表接口返回裸数组而不是分页包装
	BareArrays bool
	// Latency 是每个请求额外的延迟
	Latency time.Duration
	Now     func() time.Time
	Logger  *slog.Logger
}

type Server struct {
	opts       Options
	validate   *validator.Validate
	translator ut.Translator
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	state *state

	hitsMu   sync.Mutex
	hits     map[string]int
	bodies   map[string][]byte
	failures map[string][]failure

	Mux *chi.Mux
}

type failure struct {
	status  int
	message string
}

func NewServer(opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "timetrak-stub-secret"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.AdminUsername == "" {
		opts.AdminUsername = "admin"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin123"
	}
	if opts.CompanyName == "" {
		opts.CompanyName = "TimeTrak Demo"
	}
	if opts.PublicURL == "" {
		opts.PublicURL = "http://localhost:5173"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	s := &Server{
		opts:       opts,
		validate:   validate,
		translator: trans,
		logger:     opts.Logger,
		now:        opts.Now,
		state:      newState(),
		hits:       make(map[string]int),
		bodies:     make(map[string][]byte),
		failures:   make(map[string][]failure),
		Mux:        chi.NewRouter(),
	}

	// 初始管理员
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	s.state.company = domain.Company{ID: 1, Name: opts.CompanyName, Email: "hr@timetrak.local"}
	s.state.addAccount(domain.User{
		Username: opts.AdminUsername,
		Name:     "Administrator",
		Email:    "admin@timetrak.local",
		Role:     domain.RoleAdmin,
	}, hash)

	return s, nil
}

func (s *Server) RegisterRoutes() {
	s.Mux.Use(s.requestLogger)
	s.Mux.Use(s.recoverer)
	s.Mux.Use(s.counter)
	s.Mux.Use(s.latency)
	s.Mux.Use(s.injectFailures)

	s.Mux.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.Login)
			r.Post("/refresh", s.Refresh)
			r.Post("/logout", s.Logout)
			r.Post("/register/company", s.RegisterCompany)
		})

		// 公开的邀请接口
		r.Get("/invites/validate/{code}", s.ValidateInvite)
		r.Post("/invites/register", s.RegisterByInvite)

		r.Group(func(r chi.Router) {
			r.Use(s.auth)
			r.Use(s.requireRole(domain.RoleAdmin))

			r.Route("/invites", func(r chi.Router) {
				r.Post("/", s.CreateInvite)
				r.Get("/", s.ListInvites)
				r.Get("/active", s.ListActiveInvites)
				r.Patch("/{code}/deactivate", s.DeactivateInvite)
				r.Get("/{code}/url", s.GetInviteURL)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/current", s.CurrentPeriod)
				r.Get("/available", s.AvailablePeriods)
				r.Get("/most-recent-completed", s.MostRecentCompletedPeriod)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Route("/employees", func(r chi.Router) {
					r.Get("/", s.ListEmployees)
					r.Get("/active", s.ListActiveEmployees)
					r.Get("/status/{status}", s.ListEmployeesByStatus)
					r.Get("/department/{id}", s.ListEmployeesByDepartment)
					r.Get("/search", s.SearchEmployees)
					r.Post("/register", s.RegisterEmployee)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.GetEmployee)
						r.Delete("/", s.DeleteEmployee)
						r.Patch("/{action}", s.TransitionEmployee)
					})
				})

				r.Route("/organization", func(r chi.Router) {
					r.Get("/company", s.GetCompany)
					r.Patch("/company", s.UpdateCompany)
					r.Route("/departments", func(r chi.Router) {
						r.Get("/", s.ListDepartments)
						r.Post("/", s.CreateDepartment)
						r.Get("/{id}", s.GetDepartment)
						r.Put("/{id}", s.UpdateDepartment)
						r.Delete("/{id}", s.DeleteDepartment)
					})
				})

				r.Route("/jobs", func(r chi.Router) {
					r.Get("/", s.ListJobs)
					r.Post("/", s.CreateJob)
					r.Get("/department/{id}", s.ListJobsByDepartment)
					r.Get("/search", s.SearchJobs)
					r.Get("/{id}", s.GetJob)
					r.Put("/{id}", s.UpdateJob)
					r.Delete("/{id}", s.DeleteJob)
				})

				r.Route("/employee-jobs", func(r chi.Router) {
					r.Post("/", s.AssignJob)
					r.Get("/employee/{id}", s.ListEmployeeJobs)
					r.Delete("/{id}", s.UnassignJob)
					r.Patch("/{id}/wage", s.UpdateWageOverride)
				})

				r.Route("/shifts", func(r chi.Router) {
					r.Get("/", s.ListShifts)
					r.Post("/", s.CreateShift)
					r.Get("/status/{status}", s.ListShiftsByStatus)
					r.Get("/period", s.ListShiftsByPeriod)
					r.Get("/employee/{id}", s.ListShiftsByEmployee)
					r.Get("/department/{id}", s.ListShiftsByDepartment)
					r.Get("/this-week", s.ListShiftsThisWeek)
					r.Get("/this-month", s.ListShiftsThisMonth)
					r.Post("/clock-in", s.ClockIn)
					r.Post("/clock-out", s.ClockOut)
					r.Post("/bulk/clock-in", s.BulkClockIn)
					r.Post("/bulk/clock-out", s.BulkClockOut)
					r.Get("/{id}", s.GetShift)
					r.Put("/{id}", s.UpdateShift)
					r.Delete("/{id}", s.DeleteShift)
				})

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", s.ListPayments)
					r.Get("/status/{status}", s.ListPaymentsByStatus)
					r.Get("/employee/{id}", s.ListPaymentsByEmployee)
					r.Get("/period/{number}", s.ListPaymentsByPeriod)
					r.Post("/calculate-period", s.CalculatePeriod)
					r.Get("/export", s.ExportPayments)
					r.Patch("/{id}/status", s.UpdatePaymentStatus)
				})
			})
		})
	})
}

// Hits 返回某个端点被请求的次数，path 不含 /api 前缀，例如 "GET /admin/employees"
func (s *Server) Hits(method, path string) int {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits 返回全部请求次数
func (s *Server) TotalHits() int {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// LastBody 返回该端点最近一次收到的原始请求体
func (s *Server) LastBody(method, path string) []byte {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	return s.bodies[method+" "+path]
}

func (s *Server) ResetHits() {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	clear(s.hits)
	clear(s.bodies)
}

// FailNext 让下一次对该端点的请求返回指定的错误，可以多次调用排队
func (s *Server) FailNext(method, path string, status int, message string) {
	s.hitsMu.Lock()
	defer s.hitsMu.Unlock()
	k := method + " " + path
	s.failures[k] = append(s.failures[k], failure{status: status, message: message})
}
