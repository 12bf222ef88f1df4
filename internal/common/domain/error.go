package domain

import "errors"

// Sentinel errors shared by the three services. Handlers translate them to
// HTTP statuses and stable machine-readable codes via the maps below, so
// services can wrap them freely with fmt.Errorf("...: %w", err).
var (
	ErrInternal   = errors.New("internal error")
	ErrValidation = errors.New("invalid input data")

	ErrUserNotFound    = errors.New("user not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrOrderNotFound   = errors.New("order not found")

	// Auth errors.
	ErrMissingToken       = errors.New("access token not provided")
	ErrInvalidToken       = errors.New("access token is invalid")
	ErrExpiredToken       = errors.New("access token has expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrForbidden          = errors.New("access denied")

	// Registration conflicts.
	ErrEmailTaken = errors.New("email already registered")
	ErrCPFTaken   = errors.New("cpf already registered")

	// Vehicle business errors.
	ErrVehicleNotForSale  = errors.New("vehicle is not available for purchase")
	ErrVehicleAlreadySold = errors.New("vehicle has already been sold")
	ErrVehicleSoldLocked  = errors.New("sold vehicles cannot be modified or removed")

	// Order business errors.
	ErrSelfPurchase      = errors.New("buyer cannot purchase their own vehicle")
	ErrPriceBelowListing = errors.New("final price cannot be below the vehicle price")
	ErrInvalidTransition = errors.New("order status does not allow this change")

	// The vehicle directory could not be reached (network/timeout/breaker).
	ErrVehicleServiceDown = errors.New("vehicle service unavailable")

	ErrRateLimited = errors.New("too many requests")
)

// codeMap assigns every sentinel its wire code. Codes are part of the API
// contract; clients match on them, not on messages.
var codeMap = map[error]string{
	ErrInternal:   "INTERNAL_ERROR",
	ErrValidation: "VALIDATION_ERROR",

	ErrUserNotFound:    "USER_NOT_FOUND",
	ErrVehicleNotFound: "VEHICLE_NOT_FOUND",
	ErrOrderNotFound:   "ORDER_NOT_FOUND",

	ErrMissingToken:       "TOKEN_MISSING",
	ErrInvalidToken:       "INVALID_TOKEN",
	ErrExpiredToken:       "TOKEN_EXPIRED",
	ErrInvalidCredentials: "INVALID_CREDENTIALS",
	ErrAccountDisabled:    "ACCOUNT_DISABLED",
	ErrForbidden:          "ACCESS_DENIED",

	ErrEmailTaken: "EMAIL_ALREADY_EXISTS",
	ErrCPFTaken:   "CPF_ALREADY_EXISTS",

	ErrVehicleNotForSale:  "VEHICLE_NOT_AVAILABLE",
	ErrVehicleAlreadySold: "VEHICLE_ALREADY_SOLD",
	ErrVehicleSoldLocked:  "CANNOT_MODIFY_SOLD_VEHICLE",

	ErrSelfPurchase:      "SELF_PURCHASE_NOT_ALLOWED",
	ErrPriceBelowListing: "INVALID_PRICE",
	ErrInvalidTransition: "INVALID_STATUS_CHANGE",

	ErrVehicleServiceDown: "VEHICLE_SERVICE_UNAVAILABLE",

	ErrRateLimited: "RATE_LIMIT_EXCEEDED",
}

// Code returns the stable wire code for err, unwrapping as needed.
func Code(err error) string {
	for sentinel, code := range codeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "INTERNAL_ERROR"
}

// Known reports whether err wraps one of the shared sentinels.
func Known(err error) bool {
	for sentinel := range codeMap {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
