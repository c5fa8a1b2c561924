package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taxi/internal/domain"
	"taxi/internal/redis"
	"taxi/internal/repository"
)

const (
	// acceptLockTTL bounds how long an order stays locked while a driver
	// accepts it.
	acceptLockTTL = 10 * time.Second

	// passengerHistoryLimit caps the passenger order history view.
	passengerHistoryLimit = 10
)

// statusRank orders lifecycle states so late or duplicate actions can be
// told apart from out-of-order ones.
var statusRank = map[domain.OrderStatus]int{
	domain.OrderStatusSearching: 0,
	domain.OrderStatusAccepted:  1,
	domain.OrderStatusArriving:  2,
	domain.OrderStatusRiding:    3,
	domain.OrderStatusCompleted: 4,
}

// OrderService owns the order lifecycle state machine. Every transition is
// a conditional status update plus its fan-out (driver status, notification)
// inside one transaction, so a transition either fully applies or not at all.
type OrderService struct {
	uow          repository.UnitOfWork
	orders       repository.OrderRepository
	users        repository.UserRepository
	drivers      repository.DriverRepository
	notifier     *Notifier
	locks        redis.LockStoreInterface
	driverCache  redis.DriverCacheInterface
	defaultPrice float64
}

// NewOrderService creates a new OrderService. locks and driverCache may be
// nil, in which case the service runs without the Redis fast paths.
func NewOrderService(
	uow repository.UnitOfWork,
	orders repository.OrderRepository,
	users repository.UserRepository,
	drivers repository.DriverRepository,
	notifier *Notifier,
	locks redis.LockStoreInterface,
	driverCache redis.DriverCacheInterface,
	defaultPrice float64,
) *OrderService {
	return &OrderService{
		uow:          uow,
		orders:       orders,
		users:        users,
		drivers:      drivers,
		notifier:     notifier,
		locks:        locks,
		driverCache:  driverCache,
		defaultPrice: defaultPrice,
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	PassengerID    string
	PickupLat      float64
	PickupLon      float64
	DestinationLat float64
	DestinationLon float64
	Tariff         domain.Tariff // empty defaults to economy
}

// Create creates a new order in status searching and notifies all drivers.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLon) {
		return nil, ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLon) {
		return nil, ErrInvalidDestinationLocation
	}

	tariff, err := validateTariff(req.Tariff)
	if err != nil {
		return nil, err
	}

	// Passenger must exist; ErrNotFound surfaces to the caller.
	if _, err := s.users.GetByID(ctx, req.PassengerID); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:             uuid.New().String(),
		PassengerID:    req.PassengerID,
		PickupLat:      req.PickupLat,
		PickupLon:      req.PickupLon,
		DestinationLat: req.DestinationLat,
		DestinationLon: req.DestinationLon,
		Tariff:         tariff,
		Status:         domain.OrderStatusSearching,
		CreatedAt:      time.Now(),
	}

	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		return s.notifier.OrderCreated(ctx, r.Notifications, order)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// Accept transitions an order from searching to accepted on behalf of a
// driver. The conditional update serializes concurrent accepts: exactly one
// driver wins, the loser gets the idempotence treatment below. A duplicate
// accept on an already-assigned order is a no-op returning the current
// state; accepting a completed order is rejected.
func (s *OrderService) Accept(ctx context.Context, orderID, driverID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	driverUser, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driverUser.Role != domain.RoleDriver {
		return nil, ErrNotADriver
	}

	if s.locks != nil {
		locked, err := s.locks.AcquireOrderLock(ctx, orderID, acceptLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			// Another accept is in flight; it will win the row.
			return nil, ErrInvalidTransition
		}
		defer func() { _ = s.locks.ReleaseOrderLock(ctx, orderID) }()
	}

	var result *domain.Order
	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		ok, err := r.Orders.Accept(ctx, orderID, driverID, time.Now())
		if err != nil {
			return err
		}

		if !ok {
			order, err := r.Orders.GetByID(ctx, orderID)
			if err != nil {
				return err
			}
			if order.Status == domain.OrderStatusCompleted {
				return ErrInvalidTransition
			}
			if statusRank[order.Status] >= statusRank[domain.OrderStatusAccepted] {
				// Already assigned; keep the first driver.
				result = order
				return nil
			}
			return ErrInvalidTransition
		}

		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := r.Drivers.UpdateStatus(ctx, driverID, domain.DriverStatusBusy); err != nil {
			return err
		}

		if err := s.notifier.DriverAssigned(ctx, r.Notifications, order, driverUser.Name); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateDriverCache(ctx, driverID)
	return result, nil
}

// Arrive transitions an order from accepted to arriving and notifies the
// passenger that the driver is waiting.
func (s *OrderService) Arrive(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	var result *domain.Order
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		ok, err := r.Orders.MarkArriving(ctx, orderID)
		if err != nil {
			return err
		}

		if !ok {
			order, err := s.resolveNoOp(ctx, r, orderID, domain.OrderStatusArriving)
			if err != nil {
				return err
			}
			result = order
			return nil
		}

		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := s.notifier.DriverArrived(ctx, r.Notifications, order); err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Start transitions an order from arriving to riding. No fan-out.
func (s *OrderService) Start(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	var result *domain.Order
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		ok, err := r.Orders.MarkRiding(ctx, orderID, time.Now())
		if err != nil {
			return err
		}

		if !ok {
			order, err := s.resolveNoOp(ctx, r, orderID, domain.OrderStatusRiding)
			if err != nil {
				return err
			}
			result = order
			return nil
		}

		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Complete transitions an order from riding to completed, records the final
// price (falling back to the configured default when none is supplied),
// frees the driver, and notifies the passenger.
func (s *OrderService) Complete(ctx context.Context, orderID string, price float64) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	if price == 0 {
		price = s.defaultPrice
	}

	var result *domain.Order
	var freedDriverID string
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		ok, err := r.Orders.Complete(ctx, orderID, price, time.Now())
		if err != nil {
			return err
		}

		if !ok {
			order, err := s.resolveNoOp(ctx, r, orderID, domain.OrderStatusCompleted)
			if err != nil {
				return err
			}
			result = order
			return nil
		}

		order, err := r.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := r.Drivers.UpdateStatus(ctx, order.DriverID, domain.DriverStatusOnline); err != nil {
			return err
		}

		if err := s.notifier.TripCompleted(ctx, r.Notifications, order); err != nil {
			return err
		}

		result = order
		freedDriverID = order.DriverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if freedDriverID != "" {
		s.invalidateDriverCache(ctx, freedDriverID)
	}
	return result, nil
}

// resolveNoOp decides what a failed conditional update means. An order
// already in or past the target state makes the action a late duplicate:
// return the current state unchanged. An order still short of the action's
// precondition makes it out of order: reject.
func (s *OrderService) resolveNoOp(ctx context.Context, r repository.Repos, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	order, err := r.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if statusRank[order.Status] >= statusRank[target] {
		return order, nil
	}
	return nil, ErrInvalidTransition
}

// GetByID retrieves an order by ID.
func (s *OrderService) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	return s.orders.GetByID(ctx, orderID)
}

// PassengerInfo is the passenger contact detail attached to a driver's
// queue view.
type PassengerInfo struct {
	Name   string
	Phone  string
	Rating float64
}

// DriverInfo is the driver and vehicle detail attached to a passenger's
// history view once a driver is assigned.
type DriverInfo struct {
	Name         string
	Phone        string
	Rating       float64
	CarBrand     string
	CarModel     string
	CarColor     string
	LicensePlate string
}

// OrderView is an order enriched with counterparty details for one viewer.
type OrderView struct {
	Order     *domain.Order
	Passenger *PassengerInfo
	Driver    *DriverInfo
}

// List returns the order projection for a viewer: drivers see the live work
// queue (everything not yet completed), passengers see their own recent
// orders with driver and vehicle details where assigned. Both are recomputed
// from current state on every call.
func (s *OrderService) List(ctx context.Context, viewerID string, role domain.Role) ([]OrderView, error) {
	switch role {
	case domain.RoleDriver:
		return s.listForDriver(ctx)
	case domain.RolePassenger:
		if viewerID == "" {
			return nil, ErrInvalidPassengerID
		}
		return s.listForPassenger(ctx, viewerID)
	default:
		return nil, ErrInvalidRole
	}
}

func (s *OrderService) listForDriver(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orders.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{Order: order}
		passenger, err := s.users.GetByID(ctx, order.PassengerID)
		if err == nil {
			view.Passenger = &PassengerInfo{
				Name:   passenger.Name,
				Phone:  passenger.Phone,
				Rating: passenger.Rating,
			}
		} else if err != repository.ErrNotFound {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *OrderService) listForPassenger(ctx context.Context, passengerID string) ([]OrderView, error) {
	orders, err := s.orders.ListByPassenger(ctx, passengerID, passengerHistoryLimit)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		view := OrderView{Order: order}
		if order.DriverID != "" {
			info, err := s.driverInfo(ctx, order.DriverID)
			if err != nil {
				return nil, err
			}
			view.Driver = info
		}
		views = append(views, view)
	}
	return views, nil
}

// driverInfo assembles driver+vehicle details, preferring the Redis cache
// over two Postgres lookups. The cache is invalidated whenever the engine
// or the driver changes status, so staleness is bounded.
func (s *OrderService) driverInfo(ctx context.Context, driverID string) (*DriverInfo, error) {
	if s.driverCache != nil {
		cached, err := s.driverCache.GetDriver(ctx, driverID)
		if err == nil && cached != nil {
			return &DriverInfo{
				Name:         cached.Name,
				Phone:        cached.Phone,
				Rating:       cached.Rating,
				CarBrand:     cached.CarBrand,
				CarModel:     cached.CarModel,
				CarColor:     cached.CarColor,
				LicensePlate: cached.LicensePlate,
			}, nil
		}
	}

	user, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	driver, err := s.drivers.GetByUserID(ctx, driverID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}

	if s.driverCache != nil {
		_ = s.driverCache.SetDriver(ctx, &redis.CachedDriver{
			UserID:       user.ID,
			Name:         user.Name,
			Phone:        user.Phone,
			Rating:       user.Rating,
			CarBrand:     driver.CarBrand,
			CarModel:     driver.CarModel,
			CarColor:     driver.CarColor,
			LicensePlate: driver.LicensePlate,
			Status:       string(driver.Status),
		})
	}

	return &DriverInfo{
		Name:         user.Name,
		Phone:        user.Phone,
		Rating:       user.Rating,
		CarBrand:     driver.CarBrand,
		CarModel:     driver.CarModel,
		CarColor:     driver.CarColor,
		LicensePlate: driver.LicensePlate,
	}, nil
}

func (s *OrderService) invalidateDriverCache(ctx context.Context, driverID string) {
	if s.driverCache == nil {
		return
	}
	_ = s.driverCache.InvalidateDriver(ctx, driverID)
}

func validateTariff(t domain.Tariff) (domain.Tariff, error) {
	switch t {
	case domain.TariffEconomy, domain.TariffComfort, domain.TariffBusiness:
		return t, nil
	case "":
		return domain.TariffEconomy, nil
	default:
		return "", ErrInvalidTariff
	}
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lon float64) bool {
	return lon >= -180 && lon <= 180
}
