package api

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/cargobooking/internal/domain"
	"github.com/Domenick1991/cargobooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

const maxImportBytes = 10 << 20

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID           int64  `json:"id"`
	Airline      string `json:"airline"`
	FlightNo     string `json:"flight_no"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	Date         string `json:"date"`
	Capacity     int    `json:"capacity"`
	Remaining    int    `json:"remaining"`
	CargoType    string `json:"cargo_type"`
	CreatedAtUTC string `json:"created_at,omitempty"`
}

type interlineResponse struct {
	Origin      string           `json:"origin"`
	Via         string           `json:"via"`
	Destination string           `json:"destination"`
	Capacity    int              `json:"capacity"`
	CargoType   string           `json:"cargo_type"`
	Legs        []flightResponse `json:"legs"`
}

type searchResponse struct {
	Direct    []flightResponse    `json:"direct"`
	Interline []interlineResponse `json:"interline"`
}

type importResponse struct {
	Imported int              `json:"imported"`
	Flights  []flightResponse `json:"flights"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/large", h.large)
	router.POST("/import", h.importFile)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) RegisterSearch(router *gin.RouterGroup) {
	router.GET("/search", h.search)
	router.GET("/interline", h.interline)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *FlightHandler) large(c *gin.Context) {
	list, err := h.service.ListLarge(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponses(list))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id", "invalid id")
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(*flight))
}

func (h *FlightHandler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file", "multipart field file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "file", err.Error())
		return
	}
	defer file.Close()

	var created []domain.Flight
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		created, err = h.service.ImportXLSX(c.Request.Context(), file)
	case ".csv", "":
		created, err = h.service.ImportCSV(c.Request.Context(), file)
	default:
		badRequest(c, "file", "expected a .csv or .xlsx file")
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, importResponse{Imported: len(created), Flights: toFlightResponses(created)})
}

func (h *FlightHandler) search(c *gin.Context) {
	result, err := h.service.Search(c.Request.Context(), routeQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, searchResponse{
		Direct:    toFlightResponses(result.Direct),
		Interline: toInterlineResponses(result.Interline),
	})
}

func (h *FlightHandler) interline(c *gin.Context) {
	routes, err := h.service.Match(c.Request.Context(), routeQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInterlineResponses(routes))
}

func routeQuery(c *gin.Context) domain.RouteQuery {
	return domain.RouteQuery{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
		Category:    c.Query("category"),
	}
}

func toFlightResponse(f domain.Flight) flightResponse {
	resp := flightResponse{
		ID:          f.ID,
		Airline:     f.Carrier,
		FlightNo:    f.FlightNumber,
		Origin:      f.Origin,
		Destination: f.Destination,
		Date:        domain.FormatDate(f.Date),
		Capacity:    f.Capacity,
		Remaining:   f.Remaining,
		CargoType:   string(f.Category),
	}
	if !f.CreatedAt.IsZero() {
		resp.CreatedAtUTC = f.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toFlightResponses(list []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFlightResponse(f))
	}
	return out
}

func toInterlineResponses(routes []domain.InterlineRoute) []interlineResponse {
	out := make([]interlineResponse, 0, len(routes))
	for _, r := range routes {
		out = append(out, interlineResponse{
			Origin:      r.Origin(),
			Via:         r.Via(),
			Destination: r.Destination(),
			Capacity:    r.Capacity,
			CargoType:   string(r.Category),
			Legs:        []flightResponse{toFlightResponse(r.FirstLeg), toFlightResponse(r.SecondLeg)},
		})
	}
	return out
}
