package order

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/go-resty/resty/v2"
)

// vehicleForSale is the availability value on the vehicle service wire.
const vehicleForSale = "for_sale"

// VehicleInfo is the slice of a vehicle the order service needs.
type VehicleInfo struct {
	ID       string  `json:"id"`
	Make     string  `json:"make"`
	Model    string  `json:"model"`
	Year     int     `json:"year"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
	SellerID string  `json:"sellerId"`
}

// VehicleDirectory is the vehicle service as seen from here. MarkSold
// forwards the caller's bearer token; the vehicle service enforces auth.
type VehicleDirectory interface {
	GetVehicle(ctx context.Context, id string) (*VehicleInfo, error)
	MarkSold(ctx context.Context, token, id, buyerID string) error
}

// HTTPVehicleClient talks to the vehicle service over REST, behind a
// circuit breaker so a dead inventory service fails fast instead of tying
// up order requests. No automatic retry: the sale endpoint is not
// idempotent, so a timed-out call that landed server-side must surface as
// a failure for a human to resolve, not be replayed.
type HTTPVehicleClient struct {
	client  *resty.Client
	breaker *middleware.CircuitBreaker
	log     logger.Logger
}

func NewHTTPVehicleClient(baseURL string, timeout time.Duration, log logger.Logger) *HTTPVehicleClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &HTTPVehicleClient{
		client:  client,
		breaker: middleware.NewCircuitBreaker("vehicle-service", 5, 30*time.Second),
		log:     log,
	}
}

func (c *HTTPVehicleClient) GetVehicle(ctx context.Context, id string) (*VehicleInfo, error) {
	var body struct {
		Vehicle VehicleInfo `json:"vehicle"`
	}

	err := c.breaker.Call(ctx, func() error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&body).
			Get(fmt.Sprintf("/vehicles/%s", id))
		if err != nil {
			return err
		}
		switch resp.StatusCode() {
		case http.StatusOK:
			return nil
		case http.StatusNotFound:
			return domain.ErrVehicleNotFound
		default:
			return fmt.Errorf("vehicle service returned %d", resp.StatusCode())
		}
	})

	return &body.Vehicle, c.mapErr(err, "get vehicle")
}

func (c *HTTPVehicleClient) MarkSold(ctx context.Context, token, id, buyerID string) error {
	err := c.breaker.Call(ctx, func() error {
		resp, err := c.client.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(map[string]string{"buyerId": buyerID}).
			Post(fmt.Sprintf("/vehicles/%s/sell", id))
		if err != nil {
			return err
		}
		switch resp.StatusCode() {
		case http.StatusOK:
			return nil
		case http.StatusNotFound:
			return domain.ErrVehicleNotFound
		case http.StatusConflict:
			return domain.ErrVehicleAlreadySold
		default:
			return fmt.Errorf("vehicle service returned %d", resp.StatusCode())
		}
	})

	return c.mapErr(err, "mark vehicle sold")
}

// mapErr keeps domain errors intact and folds everything else (transport
// failures, open breaker, unexpected statuses) into ErrVehicleServiceDown.
func (c *HTTPVehicleClient) mapErr(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case domain.Known(err):
		return err
	default:
		c.log.Errorf("%s: vehicle service unavailable: %v", op, err)
		return domain.ErrVehicleServiceDown
	}
}
