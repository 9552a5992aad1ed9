package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
	"github.com/smartcompute/monitoring-system/internal/core/ports"
	"github.com/smartcompute/monitoring-system/internal/core/service"
)

// IncidentRouter produces routing decisions for incidents.
type IncidentRouter interface {
	Route(inc *domain.Incident) service.RouteDecision
}

// IncidentHandler handles HTTP requests for incident operations.
type IncidentHandler struct {
	service ports.IncidentService
	repo    ports.IncidentRepository
	router  IncidentRouter
}

func NewIncidentHandler(svc ports.IncidentService, repo ports.IncidentRepository, router IncidentRouter) *IncidentHandler {
	return &IncidentHandler{service: svc, repo: repo, router: router}
}

// Create handles POST /v1/incidents. It opens an incident manually.
//
// @Summary      Open an incident manually
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createIncidentRequest  true  "Incident details"
// @Success      201   {object}  createIncidentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/incidents [post]
func (h *IncidentHandler) Create(c echo.Context) error {
	var req createIncidentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	username, _ := c.Get("username").(string)

	result, err := h.service.CreateIncident(c.Request().Context(), ports.CreateIncidentInput{
		AssetID:  req.AssetID,
		Category: req.Category,
		Title:    req.Title,
		Severity: req.Severity,
		TeamID:   teamID,
		Actor:    username,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createIncidentResponse{
		IncidentID: result.IncidentID,
		Status:     result.Status,
		Severity:   result.Severity,
		CreatedAt:  formatTime(result.CreatedAt),
		Links: incidentLinks{
			Self:   "/v1/incidents/" + result.IncidentID,
			Events: "/v1/incidents/" + result.IncidentID + "/events",
		},
	})
}

// Get handles GET /v1/incidents/:incident_id.
//
// @Summary      Get an incident by identifier
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        incident_id  path      string  true  "Incident identifier (e.g. SC-7A8B9C2D)"
// @Success      200          {object}  getIncidentResponse
// @Failure      403          {object}  errorResponse
// @Failure      404          {object}  errorResponse
// @Router       /v1/incidents/{incident_id} [get]
func (h *IncidentHandler) Get(c echo.Context) error {
	role, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetIncident(c.Request().Context(), ports.GetIncidentInput{
		IncidentID: c.Param("incident_id"),
		Role:       role,
		TeamID:     teamID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// List handles GET /v1/incidents with filters and pagination.
//
// @Summary      List incidents
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "Filter by status"
// @Param        severity  query     string  false  "Filter by severity"
// @Param        category  query     string  false  "Filter by category"
// @Param        asset_id  query     string  false  "Filter by asset"
// @Param        search    query     string  false  "Partial match on incident_id or title"
// @Param        page      query     int     false  "Page (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  listIncidentsResponse
// @Failure      401       {object}  errorResponse
// @Router       /v1/incidents [get]
func (h *IncidentHandler) List(c echo.Context) error {
	role, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	input := ports.ListIncidentsInput{
		Role:     role,
		TeamID:   teamID,
		Status:   c.QueryParam("status"),
		Severity: c.QueryParam("severity"),
		Category: c.QueryParam("category"),
		AssetID:  c.QueryParam("asset_id"),
		Search:   c.QueryParam("search"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}
	if from := c.QueryParam("date_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			input.DateFrom = t
		}
	}
	if to := c.QueryParam("date_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			input.DateTo = t
		}
	}

	result, err := h.service.ListIncidents(c.Request().Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Transition handles POST /v1/incidents/:incident_id/status.
//
// @Summary      Apply a lifecycle transition to an incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        incident_id  path      string             true  "Incident identifier"
// @Param        body         body      transitionRequest  true  "Target status"
// @Success      200          {object}  getIncidentResponse
// @Failure      404          {object}  errorResponse
// @Failure      422          {object}  errorResponse
// @Router       /v1/incidents/{incident_id}/status [post]
func (h *IncidentHandler) Transition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	username, _ := c.Get("username").(string)

	detail, err := h.service.Transition(c.Request().Context(), ports.TransitionInput{
		IncidentID: c.Param("incident_id"),
		NextStatus: req.Status,
		Notes:      req.Notes,
		Role:       role,
		TeamID:     teamID,
		Actor:      username,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// Route handles GET /v1/incidents/:incident_id/route and reports the
// orchestrator's current routing verdict for the incident.
//
// @Summary      Get the orchestrator routing decision for an incident
// @Tags         incidents
// @Produce      json
// @Security     BearerAuth
// @Param        incident_id  path      string  true  "Incident identifier"
// @Success      200          {object}  routeDecisionResponse
// @Failure      404          {object}  errorResponse
// @Router       /v1/incidents/{incident_id}/route [get]
func (h *IncidentHandler) Route(c echo.Context) error {
	role, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}
	teamFilter := ""
	if role == domain.RoleAnalyst {
		teamFilter = teamID
	}

	incident, err := h.repo.FindByIncidentID(c.Request().Context(), c.Param("incident_id"), teamFilter)
	if err != nil {
		return err
	}

	decision := h.router.Route(incident)
	return c.JSON(http.StatusOK, routeDecisionResponse{
		IncidentID: incident.IncidentID,
		Action:     string(decision.Action),
		Reason:     decision.Reason,
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func queryInt(c echo.Context, name string) int {
	v := c.QueryParam(name)
	if v == "" {
		return 0
	}
	n := 0
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
