package domain

// DriverStatus represents the current availability of a driver.
type DriverStatus string

const (
	DriverStatusOffline DriverStatus = "offline"
	DriverStatusOnline  DriverStatus = "online"
	DriverStatusBusy    DriverStatus = "busy"
)

// Driver is the vehicle profile attached to a user with role=driver.
// Status is flipped to busy/online by the order lifecycle on accept/complete
// and set directly by the driver otherwise.
type Driver struct {
	UserID       string
	CarBrand     string
	CarModel     string
	CarColor     string
	LicensePlate string
	Status       DriverStatus
}
