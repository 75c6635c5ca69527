package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
	"github.com/eltatrack/courier-webhooks/internal/core/ports"
)

// WebhookHandler serves the courier webhook endpoint: authenticated POST for
// ingestion, unauthenticated GET for the dashboard queries. Both share the
// /webhook path, dispatching GETs on the action query parameter — the wire
// contract existing couriers and dashboards already speak.
type WebhookHandler struct {
	ingest ports.IngestService
	query  ports.QueryService
}

// NewWebhookHandler wires the handler to its services.
func NewWebhookHandler(ingest ports.IngestService, query ports.QueryService) *WebhookHandler {
	return &WebhookHandler{ingest: ingest, query: query}
}

// Ingest handles POST /webhook — appends one status update to the voucher's
// history.
//
// @Summary      Ingest a courier status update
// @Accept       json
// @Produce      json
// @Success      200  {object}  ingestResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /webhook [post]
func (h *WebhookHandler) Ingest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}

	res, err := h.ingest.Ingest(c.Request().Context(), body)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ingestResponse{Status: "OK", Filename: res.Filename})
}

// Query handles GET /webhook — dispatches on ?action=.
//
// @Summary      Query recent activity or a voucher's history
// @Produce      json
// @Param        action   query  string  true   "getRecent or getHistory"
// @Param        voucher  query  string  false  "voucher id (getHistory only)"
// @Success      200
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /webhook [get]
func (h *WebhookHandler) Query(c echo.Context) error {
	switch c.QueryParam("action") {
	case "getRecent":
		events, err := h.query.Recent(c.Request().Context())
		if err != nil {
			return err
		}
		if events == nil {
			events = []domain.StatusEvent{}
		}
		return c.JSON(http.StatusOK, events)

	case "getHistory":
		voucher := c.QueryParam("voucher")
		if voucher == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing voucher parameter")
		}
		rec, err := h.query.History(c.Request().Context(), voucher)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, rec)

	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown action")
	}
}
