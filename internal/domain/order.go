package domain

import "time"

// OrderStatus represents the current lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusSearching OrderStatus = "searching"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusArriving  OrderStatus = "arriving"
	OrderStatusRiding    OrderStatus = "riding"
	OrderStatusCompleted OrderStatus = "completed"
)

// Tariff represents the service class requested for an order.
type Tariff string

const (
	TariffEconomy  Tariff = "economy"
	TariffComfort  Tariff = "comfort"
	TariffBusiness Tariff = "business"
)

// Order represents one requested ride moving through a fixed lifecycle.
// DriverID is empty until the order is accepted and is assigned exactly once.
// Price is zero until the order is completed. Lifecycle timestamps are set
// exactly once each, in order: AcceptedAt <= StartedAt <= CompletedAt.
type Order struct {
	ID             string
	PassengerID    string
	DriverID       string
	PickupLat      float64
	PickupLon      float64
	DestinationLat float64
	DestinationLon float64
	Tariff         Tariff
	Status         OrderStatus
	Price          float64
	CreatedAt      time.Time
	AcceptedAt     time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
}
