package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcompute/monitoring-system/internal/core/ports"
)

// EventDispatcher is the interface the handler uses to enqueue events.
type EventDispatcher interface {
	Enqueue(event ports.SecurityEventInput)
	EnqueueBatch(events []ports.SecurityEventInput)
}

// EventHandler handles security event ingestion.
type EventHandler struct {
	dispatcher EventDispatcher
}

// NewEventHandler creates an EventHandler backed by the given dispatcher.
func NewEventHandler(dispatcher EventDispatcher) *EventHandler {
	return &EventHandler{dispatcher: dispatcher}
}

// Receive handles POST /v1/events. It enqueues a single event and returns 202.
//
// @Summary      Ingest a single security event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      securityEventRequest  true  "Security event"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/events [post]
func (h *EventHandler) Receive(c echo.Context) error {
	var req securityEventRequest
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

	h.dispatcher.Enqueue(toEventInput(req, teamID))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "event accepted"})
}

// ReceiveBatch handles POST /v1/events/batch. It enqueues the whole batch and returns 202.
//
// @Summary      Ingest a batch of security events
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []securityEventRequest  true  "Array of security events"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/events/batch [post]
func (h *EventHandler) ReceiveBatch(c echo.Context) error {
	var reqs []securityEventRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	_, teamID, err := ctxClaims(c)
	if err != nil {
		return err
	}

	inputs := make([]ports.SecurityEventInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("event[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toEventInput(req, teamID))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "events accepted",
		Count:   len(inputs),
	})
}

// toEventInput maps the HTTP request to the service DTO.
func toEventInput(r securityEventRequest, teamID string) ports.SecurityEventInput {
	in := ports.SecurityEventInput{
		AssetID:    r.AssetID,
		TeamID:     teamID,
		Category:   r.Category,
		Severity:   r.Severity,
		Confidence: r.Confidence,
		Source:     r.Source,
		Timestamp:  r.Timestamp,
	}
	if r.Indicators != nil {
		in.Indicators = ports.IndicatorsInput{
			SrcIP:       r.Indicators.SrcIP,
			DstIP:       r.Indicators.DstIP,
			ProcessName: r.Indicators.ProcessName,
			FileHash:    r.Indicators.FileHash,
		}
	}
	return in
}
