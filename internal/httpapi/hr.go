package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/hr"
	"github.com/pawonsalam/restosuite/internal/metrics"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pkg/errors"
)

var (
	employeeReaders = []models.Role{
		models.RoleSuperAdmin, models.RoleOwner, models.RoleHRManager, models.RoleRestaurantManager,
	}
	employeeWriters = []models.Role{models.RoleHRManager, models.RoleOwner}
)

type HRServer struct {
	service *hr.Service
	tokens  *auth.TokenIssuer
	metrics *metrics.Metrics
	router  *mux.Router
}

func NewHRServer(service *hr.Service, tokens *auth.TokenIssuer, m *metrics.Metrics) *HRServer {
	if m == nil {
		m = metrics.New("hr")
	}
	s := &HRServer{service: service, tokens: tokens, metrics: m, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *HRServer) Handler() http.Handler {
	return wrap(s.router)
}

func (s *HRServer) routes() {
	r := s.router
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("RestoHRIS API is running!"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.Authenticate(s.tokens))

	read := auth.Authorize(employeeReaders...)
	write := auth.Authorize(employeeWriters...)

	api.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.Handle("/employees", read(http.HandlerFunc(s.handleListEmployees))).Methods(http.MethodGet)
	api.Handle("/employees", write(http.HandlerFunc(s.handleCreateEmployee))).Methods(http.MethodPost)
	api.Handle("/employees/{id}", read(http.HandlerFunc(s.handleGetEmployee))).Methods(http.MethodGet)
	api.Handle("/employees/{id}", write(http.HandlerFunc(s.handleUpdateEmployee))).Methods(http.MethodPatch)
	api.Handle("/employees/{id}", write(http.HandlerFunc(s.handleDeleteEmployee))).Methods(http.MethodDelete)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *HRServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, user, err := s.service.Login(r.Context(), req.Email, req.Password)
	var throttled *hr.ThrottledError
	switch {
	case errors.As(err, &throttled):
		w.Header().Set("Retry-After", strconv.Itoa(throttled.WaitSeconds))
		respondError(w, http.StatusTooManyRequests,
			"Too many failed attempts. Try again in "+strconv.Itoa(throttled.WaitSeconds)+" seconds")
	case errors.Is(err, hr.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, hr.ErrInactive):
		respondError(w, http.StatusForbidden, "Account is inactive")
	case errors.Is(err, hr.ErrInvalidCredentials):
		respondError(w, http.StatusBadRequest, "Invalid credentials")
	case err != nil:
		respondServerError(w, r, err, "Server error")
	default:
		s.metrics.Event("login")
		respondJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
	}
}

func (s *HRServer) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	user, err := s.service.Me(r.Context(), p.UserID)
	switch {
	case errors.Is(err, hr.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case err != nil:
		respondServerError(w, r, err, "Server error")
	default:
		respondJSON(w, http.StatusOK, user)
	}
}

func (s *HRServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	d, err := s.service.Dashboard(r.Context(), p)
	switch {
	case errors.Is(err, hr.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case err != nil:
		respondServerError(w, r, err, "Server error while loading dashboard")
	default:
		respondJSON(w, http.StatusOK, d)
	}
}

func (s *HRServer) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.service.ListEmployees(r.Context())
	if err != nil {
		respondServerError(w, r, err, "Server error while fetching employees")
		return
	}
	if employees == nil {
		employees = []*models.User{}
	}
	respondJSON(w, http.StatusOK, employees)
}

func (s *HRServer) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req hr.NewEmployee
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	user, err := s.service.CreateEmployee(r.Context(), req)
	switch {
	case errors.Is(err, hr.ErrMissingFields):
		respondError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, hr.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, hr.ErrInvalidJoinDate):
		respondError(w, http.StatusBadRequest, "Invalid join date")
	case errors.Is(err, hr.ErrEmailInUse):
		respondError(w, http.StatusConflict, "Email already in use")
	case err != nil:
		respondServerError(w, r, err, "Server error while creating employee")
	default:
		s.metrics.Event("employee_created")
		respondJSON(w, http.StatusCreated, user)
	}
}

func (s *HRServer) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, err := s.service.GetEmployee(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, hr.ErrEmployeeNotFound):
		respondError(w, http.StatusNotFound, "Employee not found")
	case err != nil:
		respondServerError(w, r, err, "Server error while fetching employee")
	default:
		respondJSON(w, http.StatusOK, user)
	}
}

func (s *HRServer) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var patch models.EmployeePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.service.UpdateEmployee(r.Context(), mux.Vars(r)["id"], patch)
	switch {
	case errors.Is(err, hr.ErrEmployeeNotFound):
		respondError(w, http.StatusNotFound, "Employee not found")
	case errors.Is(err, hr.ErrInvalidRole):
		respondError(w, http.StatusBadRequest, "Invalid role")
	case err != nil:
		respondServerError(w, r, err, "Server error while updating employee")
	default:
		respondJSON(w, http.StatusOK, user)
	}
}

func (s *HRServer) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	err := s.service.DeactivateEmployee(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, hr.ErrEmployeeNotFound):
		respondError(w, http.StatusNotFound, "Employee not found")
	case err != nil:
		respondServerError(w, r, err, "Server error while deleting employee")
	default:
		respondJSON(w, http.StatusOK, messageResponse{Message: "Employee deactivated successfully"})
	}
}
