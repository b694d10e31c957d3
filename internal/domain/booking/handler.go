package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentora/clinic-server/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/bookings", h.CreateBooking)
	api.GET("/bookings", h.ListBookings)
	api.GET("/bookings/:id", h.GetBooking)
	api.POST("/bookings/:id/confirm-deposit", h.ConfirmDeposit)
	api.POST("/bookings/:id/confirm", h.ConfirmBooking)
	api.POST("/bookings/:id/reschedule", h.RescheduleBooking)
	api.POST("/bookings/:id/cancel", h.CancelBooking)
	api.POST("/treatment-steps/:id/follow-up", h.AddFollowUp)
	api.GET("/doctors/:id/slots", h.ListSlots)
	api.GET("/doctors/:id/availability", h.CheckAvailability)
}

// httpError maps the domain error taxonomy onto status codes.
func httpError(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
	}
	var nfe *NotFoundError
	if errors.As(err, &nfe) {
		return echo.NewHTTPError(http.StatusNotFound, nfe.Error())
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return echo.NewHTTPError(http.StatusConflict, ce.Reason)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

type createBookingRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	Date        string    `json:"date"`
	StartMin    int       `json:"start_min"`
	DurationMin int       `json:"duration_min"`
	Note        *string   `json:"note"`
}

type createBookingResponse struct {
	Booking      *Booking `json:"booking"`
	DepositToken string   `json:"deposit_token"`
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	b, token, err := h.svc.CreateBooking(c.Request().Context(), CreateRequest{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		Date:        date,
		StartMin:    req.StartMin,
		DurationMin: req.DurationMin,
		Note:        req.Note,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createBookingResponse{Booking: b, DepositToken: token})
}

func (h *Handler) GetBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	if b == nil {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBookings(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBookings(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type confirmDepositRequest struct {
	DepositToken string `json:"deposit_token"`
}

func (h *Handler) ConfirmDeposit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req confirmDepositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.ConfirmDeposit(c.Request().Context(), id, req.DepositToken)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ConfirmBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.ConfirmBooking(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type rescheduleRequest struct {
	Date        string `json:"date"`
	StartMin    int    `json:"start_min"`
	DurationMin int    `json:"duration_min"`
}

func (h *Handler) RescheduleBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	b, err := h.svc.RescheduleBooking(c.Request().Context(), id, date, req.StartMin, req.DurationMin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type cancelRequest struct {
	AsFailed bool `json:"as_failed"`
}

func (h *Handler) CancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.svc.CancelBooking(c.Request().Context(), id, req.AsFailed)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

type followUpRequest struct {
	Date     string `json:"date"`
	StartMin int    `json:"start_min"`
}

func (h *Handler) AddFollowUp(c echo.Context) error {
	stepID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req followUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	b, err := h.svc.AddFollowUp(c.Request().Context(), stepID, date, req.StartMin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func (h *Handler) ListSlots(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}

	starts, err := h.svc.ListAvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		return httpError(err)
	}

	slots := make([]string, 0, len(starts))
	for _, t := range starts {
		slots = append(slots, MinuteOfDay(t))
	}
	return c.JSON(http.StatusOK, slotsResponse{Date: c.QueryParam("date"), Slots: slots})
}

func (h *Handler) CheckAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	}
	var start, end int
	if err := echo.QueryParamsBinder(c).
		MustInt("start", &start).
		MustInt("end", &end).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end minutes are required")
	}
	if start >= end {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be before end")
	}

	ok, err := h.svc.IsAvailable(c.Request().Context(), doctorID, date, start, end)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"available": ok})
}
