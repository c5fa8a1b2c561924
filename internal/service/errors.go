package service

import "errors"

var (
	// ErrPhoneRequired is returned when a phone number is missing.
	ErrPhoneRequired = errors.New("phone is required")

	// ErrInvalidRole is returned when a role is neither passenger nor driver.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidOrderID is returned when order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidTariff is returned when the tariff is not a known class.
	ErrInvalidTariff = errors.New("invalid tariff")

	// ErrInvalidPrice is returned when a negative price is supplied.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidDriverStatus is returned when a driver status is not a known value.
	ErrInvalidDriverStatus = errors.New("invalid driver status")

	// ErrNotADriver is returned when an order action requires a driver-role user.
	ErrNotADriver = errors.New("user is not a driver")

	// ErrInvalidTransition is returned when an action is attempted on an
	// order whose current state disallows it.
	ErrInvalidTransition = errors.New("invalid order transition")
)
