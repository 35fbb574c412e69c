package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mbet-dev/mbet-adera-backend/internal/model"
	"github.com/mbet-dev/mbet-adera-backend/internal/service"
)

type ParcelHandler struct {
	svc   service.ParcelService
	query service.ParcelQueryService
}

func NewParcelHandler(svc service.ParcelService, query service.ParcelQueryService) *ParcelHandler {
	return &ParcelHandler{svc: svc, query: query}
}

type AddressPayload struct {
	ID         string   `json:"id,omitempty"`
	Line       string   `json:"line"`
	City       string   `json:"city"`
	PostalCode *string  `json:"postalCode,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

type ParcelResponse struct {
	ID                string          `json:"id"`
	TrackingCode      string          `json:"trackingCode"`
	SenderUID         string          `json:"senderUid"`
	ReceiverUID       *string         `json:"receiverUid,omitempty"`
	Status            string          `json:"status"`
	Size              string          `json:"size"`
	Description       string          `json:"description"`
	Fragile           bool            `json:"fragile"`
	WeightKG          *float64        `json:"weightKg,omitempty"`
	FeeETB            float64         `json:"feeEtb"`
	PaymentStatus     string          `json:"paymentStatus"`
	PaymentMethod     string          `json:"paymentMethod"`
	Pickup            *AddressPayload `json:"pickup,omitempty"`
	Dropoff           *AddressPayload `json:"dropoff,omitempty"`
	EstimatedDelivery string          `json:"estimatedDelivery"`
	CreatedAt         string          `json:"createdAt"`
	UpdatedAt         string          `json:"updatedAt"`
}

type ParcelPageResponse struct {
	Items      []ParcelResponse `json:"items"`
	TotalCount int64            `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
}

type CreateParcelResponse struct {
	Parcel  ParcelResponse `json:"parcel"`
	Warning string         `json:"warning,omitempty"`
}

type StatisticsResponse struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Delivered int64 `json:"delivered"`
	Cancelled int64 `json:"cancelled"`
}

type CreateParcelRequest struct {
	ReceiverUID   *string        `json:"receiverUid"`
	Pickup        AddressPayload `json:"pickup"`
	Dropoff       AddressPayload `json:"dropoff"`
	Size          string         `json:"size"`
	Description   string         `json:"description"`
	Fragile       bool           `json:"fragile"`
	WeightKG      *float64       `json:"weightKg"`
	PaymentMethod string         `json:"paymentMethod"`
	FeeETB        float64        `json:"feeEtb"`
}

func toAddressPayload(a *model.Address) *AddressPayload {
	if a == nil {
		return nil
	}
	return &AddressPayload{
		ID:         a.ID,
		Line:       a.Line,
		City:       a.City,
		PostalCode: a.PostalCode,
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
	}
}

func toParcelResponse(v *service.ParcelView) ParcelResponse {
	p := v.Parcel
	return ParcelResponse{
		ID:                p.ID,
		TrackingCode:      p.TrackingCode,
		SenderUID:         p.SenderUID,
		ReceiverUID:       p.ReceiverUID,
		Status:            string(p.Status),
		Size:              string(p.Size),
		Description:       p.Description,
		Fragile:           p.Fragile,
		WeightKG:          p.WeightKG,
		FeeETB:            p.FeeETB,
		PaymentStatus:     string(p.PaymentStatus),
		PaymentMethod:     string(p.PaymentMethod),
		Pickup:            toAddressPayload(v.Pickup),
		Dropoff:           toAddressPayload(v.Dropoff),
		EstimatedDelivery: v.EstimatedDelivery.Format(time.RFC3339),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ParcelHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateParcelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	v, err := h.svc.Create(c.Request().Context(), service.CreateParcelInput{
		SenderUID:   uid,
		ReceiverUID: req.ReceiverUID,
		Pickup: service.AddressInput{
			Line: req.Pickup.Line, City: req.Pickup.City,
			PostalCode: req.Pickup.PostalCode, Latitude: req.Pickup.Latitude, Longitude: req.Pickup.Longitude,
		},
		Dropoff: service.AddressInput{
			Line: req.Dropoff.Line, City: req.Dropoff.City,
			PostalCode: req.Dropoff.PostalCode, Latitude: req.Dropoff.Latitude, Longitude: req.Dropoff.Longitude,
		},
		Size:          req.Size,
		Description:   req.Description,
		Fragile:       req.Fragile,
		WeightKG:      req.WeightKG,
		PaymentMethod: req.PaymentMethod,
		FeeETB:        req.FeeETB,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentRecordFailed):
			// Parcel is created; tell the client the payment record is
			// still missing so the UI can prompt a retry.
			return c.JSON(http.StatusCreated, CreateParcelResponse{
				Parcel:  toParcelResponse(v),
				Warning: "parcel created but payment record failed; payment will be retried",
			})
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create parcel"))
		}
	}
	return c.JSON(http.StatusCreated, CreateParcelResponse{Parcel: toParcelResponse(v)})
}

func (h *ParcelHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	v, err := h.svc.Get(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "parcel not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch parcel"))
	}
	return c.JSON(http.StatusOK, toParcelResponse(v))
}

func (h *ParcelHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	views, err := h.svc.List(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to list parcels"))
	}
	items := make([]ParcelResponse, 0, len(views))
	for i := range views {
		items = append(items, toParcelResponse(&views[i]))
	}
	return c.JSON(http.StatusOK, ParcelPageResponse{Items: items, TotalCount: int64(len(items)), Page: 1, PageSize: len(items)})
}

func (h *ParcelHandler) Paginate(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	res, err := h.query.Paginate(
		c.Request().Context(),
		uid,
		c.QueryParam("status"),
		page,
		pageSize,
		c.QueryParam("sortBy"),
		c.QueryParam("sortDir"),
	)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to list parcels"))
	}
	items := make([]ParcelResponse, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, toParcelResponse(&res.Items[i]))
	}
	return c.JSON(http.StatusOK, ParcelPageResponse{
		Items:      items,
		TotalCount: res.TotalCount,
		Page:       res.Page,
		PageSize:   res.PageSize,
	})
}

func (h *ParcelHandler) Search(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	views, err := h.query.Search(c.Request().Context(), uid, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "search failed"))
	}
	items := make([]ParcelResponse, 0, len(views))
	for i := range views {
		items = append(items, toParcelResponse(&views[i]))
	}
	return c.JSON(http.StatusOK, ParcelPageResponse{Items: items, TotalCount: int64(len(items)), Page: 1, PageSize: len(items)})
}

func (h *ParcelHandler) Stats(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	stats, err := h.query.Statistics(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to compute statistics"))
	}
	return c.JSON(http.StatusOK, StatisticsResponse{
		Total:     stats.Total,
		Active:    stats.Active,
		Delivered: stats.Delivered,
		Cancelled: stats.Cancelled,
	})
}

func (h *ParcelHandler) Cancel(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	v, err := h.svc.Cancel(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "parcel not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to cancel parcel"))
	}
	// Status 200 either way; a non-cancelled status in the body means
	// the parcel was past the cancellable window.
	return c.JSON(http.StatusOK, toParcelResponse(v))
}

func (h *ParcelHandler) SetStatus(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	v, err := h.svc.SetStatus(c.Request().Context(), c.Param("id"), body.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "parcel not found"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to update status"))
		}
	}
	return c.JSON(http.StatusOK, toParcelResponse(v))
}

type TrackResponse struct {
	TrackingCode      string `json:"trackingCode"`
	Status            string `json:"status"`
	PickupCity        string `json:"pickupCity,omitempty"`
	DropoffCity       string `json:"dropoffCity,omitempty"`
	EstimatedDelivery string `json:"estimatedDelivery"`
	CreatedAt         string `json:"createdAt"`
}

// Track serves the public shareable tracking view: status only, no
// names, no street-level addresses.
func (h *ParcelHandler) Track(c echo.Context) error {
	v, err := h.svc.Track(c.Request().Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "tracking code not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch tracking info"))
	}
	resp := TrackResponse{
		TrackingCode:      v.Parcel.TrackingCode,
		Status:            string(v.Parcel.Status),
		EstimatedDelivery: v.EstimatedDelivery.Format(time.RFC3339),
		CreatedAt:         v.Parcel.CreatedAt.Format(time.RFC3339),
	}
	if v.Pickup != nil {
		resp.PickupCity = v.Pickup.City
	}
	if v.Dropoff != nil {
		resp.DropoffCity = v.Dropoff.City
	}
	return c.JSON(http.StatusOK, resp)
}
