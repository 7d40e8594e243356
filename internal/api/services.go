package api

import (
	"github.com/inkwellapp/inkwell-server/internal/backup"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Session   *service.SessionService
	User      *service.UserService
	Book      *service.BookService
	Cart      *service.CartService
	GiftCard  *service.GiftCardService
	PromoCode *service.PromoCodeService
	Search    *service.SearchService
	Backup    *backup.Service
}
