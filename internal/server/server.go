package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mbet-dev/mbet-adera-backend/internal/handler"
	appmw "github.com/mbet-dev/mbet-adera-backend/internal/middleware"
	"github.com/mbet-dev/mbet-adera-backend/internal/repository"
	"github.com/mbet-dev/mbet-adera-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e          *echo.Echo
	parcelRepo repository.ParcelRepository
	addrRepo   repository.AddressRepository
	txRepo     repository.TransactionRepository
}

func New(db *gorm.DB, firebaseProjectID string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "mbet-adera.com") || strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	parcelRepo := repository.NewParcelRepository(db)
	addrRepo := repository.NewAddressRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	resolver := service.NewAddressResolver(addrRepo)
	parcelSvc := service.NewParcelService(parcelRepo, addrRepo, txRepo, resolver)
	querySvc := service.NewParcelQueryService(parcelRepo, addrRepo)
	parcelHandler := handler.NewParcelHandler(parcelSvc, querySvc)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	// Public: the shareable tracking screen needs no account.
	e.GET("/api/track/:code", parcelHandler.Track)

	api := e.Group("/api")
	authMw, err := appmw.NewAuthMiddleware(context.Background(), firebaseProjectID)
	if err != nil {
		// Local development runs without Firebase; routes stay open.
		e.Logger.Warnf("auth middleware disabled: %v", err)
	} else {
		api.Use(authMw.RequireAuth)
	}

	api.POST("/parcels", parcelHandler.Create)
	api.GET("/parcels", parcelHandler.Paginate)
	api.GET("/parcels/search", parcelHandler.Search)
	api.GET("/parcels/:id", parcelHandler.Get)
	api.POST("/parcels/:id/cancel", parcelHandler.Cancel)
	api.POST("/parcels/:id/status", parcelHandler.SetStatus)
	api.GET("/me/parcels", parcelHandler.ListMine)
	api.GET("/me/parcels/stats", parcelHandler.Stats)

	return &Server{e: e, parcelRepo: parcelRepo, addrRepo: addrRepo, txRepo: txRepo}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the connection into repositories created before the
// database came up; the API listens immediately and attaches storage
// once the (slow) Cloud SQL dial completes.
func (s *Server) SetDB(db *gorm.DB) {
	s.parcelRepo.SetDB(db)
	s.addrRepo.SetDB(db)
	s.txRepo.SetDB(db)
}
