package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/trunghai04/webmoi-sub001/internal/service"

type orderService struct {
	store     repository.Store
	events    EventBus
	cache     StatsCache
	log       *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
	genNumber func(time.Time) (string, error)
}

// NewOrderService wires the order engine. events and cache may be nil.
func NewOrderService(store repository.Store, events EventBus, cache StatsCache, log *zap.Logger) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &orderService{
		store:     store,
		events:    events,
		cache:     cache,
		log:       log,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
		genNumber: newOrderNumber,
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.place")
	defer span.End()

	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := validatePlaceOrder(&in); err != nil {
		failSpan(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("order.items", len(in.Items)),
		attribute.Int64("order.total", in.Total),
	)

	now := s.now().UTC()
	var order *models.Order

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		products, err := s.checkAvailability(ctx, tx, in.Items)
		if err != nil {
			return err
		}

		order, err = buildOrder(userID, in, products, now)
		if err != nil {
			return err
		}
		if err := s.insertOrder(ctx, tx, order, now); err != nil {
			return err
		}
		if err := tx.OrderItems().BulkCreate(ctx, order.Items); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		// Повторная проверка на случай гонки между шагом 1 и списанием.
		for _, it := range sortedByProduct(order.Items) {
			if err := reserveStock(ctx, tx.Products(), it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if _, err := tx.Carts().DeleteProducts(ctx, userID, productIDs(order.Items)); err != nil {
			return fmt.Errorf("clear purchased cart items: %w", err)
		}
		return nil
	})
	if err != nil {
		failSpan(span, err)
		var se *StockError
		if errors.As(err, &se) {
			s.log.Info("Заказ отклонён: недостаточно товара",
				zap.String("user_id", userID.String()),
				zap.String("product_id", se.ProductID.String()),
				zap.Int32("requested", se.Requested),
				zap.Int32("available", se.Available))
		} else if !isDomainError(err) {
			s.log.Error("Ошибка транзакции оформления заказа", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, wrapTx("place order", err)
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()), attribute.String("order.number", order.OrderNumber))
	s.log.Info("Заказ оформлен",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.Int64("total", order.Total))

	s.invalidateStats(ctx, order.UserID)
	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Items:       itemEvents(order.Items),
			Total:       order.Total,
			CreatedAt:   order.CreatedAt,
		}); err != nil {
			s.log.Warn("Не удалось опубликовать order.created", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return &PlaceOrderResult{OrderID: order.ID, OrderNumber: order.OrderNumber, Total: order.Total}, nil
}

// checkAvailability re-reads every product inside the placement transaction.
func (s *orderService) checkAvailability(ctx context.Context, tx repository.Store, items []LineItemInput) (map[uuid.UUID]*models.Product, error) {
	products := make(map[uuid.UUID]*models.Product, len(items))
	for _, it := range items {
		p, err := tx.Products().GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("load product %s: %w", it.ProductID, err)
		}
		switch {
		case p == nil:
			return nil, &ProductError{ProductID: it.ProductID, Err: ErrProductNotFound}
		case !p.IsActive:
			return nil, &ProductError{ProductID: it.ProductID, Err: ErrProductUnavailable}
		case p.Stock < it.Quantity:
			return nil, &StockError{ProductID: it.ProductID, Requested: it.Quantity, Available: p.Stock}
		}
		if p.Price != it.UnitPrice {
			s.log.Warn("Цена в заказе отличается от текущей цены товара",
				zap.String("product_id", p.ID.String()),
				zap.Int64("snapshot_price", it.UnitPrice),
				zap.Int64("live_price", p.Price))
		}
		products[p.ID] = p
	}
	return products, nil
}

// insertOrder retries with a fresh number when order_number collides.
func (s *orderService) insertOrder(ctx context.Context, tx repository.Store, order *models.Order, now time.Time) error {
	for attempt := 1; ; attempt++ {
		number, err := s.genNumber(now)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = tx.Orders().Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateOrderNumber) || attempt >= maxOrderNumberRetries {
			return fmt.Errorf("insert order: %w", err)
		}
		s.log.Warn("Коллизия номера заказа, генерируем новый",
			zap.String("order_number", number), zap.Int("attempt", attempt))
	}
}

func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.cancel", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if len(reason) > maxReasonLen {
		return nil, invalid("reason", "must be at most %d characters", maxReasonLen)
	}

	var (
		before  *models.Order
		updated *models.Order
		now     = s.now().UTC()
	)
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		o, err := s.loadOrder(ctx, tx, id, userID, role)
		if err != nil {
			return err
		}
		before = o
		updated, err = s.reverse(ctx, tx, o, reason, nil, now)
		return err
	})
	if err != nil {
		failSpan(span, err)
		return nil, wrapTx("cancel order", err)
	}

	s.log.Info("Заказ отменён",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", string(before.Status)),
		zap.String("by", userID.String()),
		zap.String("reason", reason))
	s.afterCancel(ctx, updated, reason, now)
	return updated, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*models.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.update_status", trace.WithAttributes(
		attribute.String("order.id", in.OrderID.String()),
		attribute.String("order.status", string(in.Status)),
	))
	defer span.End()

	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !role.canManageOrders() {
		return nil, ErrForbidden
	}
	if !in.Status.Valid() {
		return nil, invalid("status", "unknown status %q", in.Status)
	}
	fields := map[string]any{}
	if in.TrackingNumber != nil {
		tn := strings.TrimSpace(*in.TrackingNumber)
		if len(tn) > maxTrackingLength {
			return nil, invalid("tracking_number", "must be at most %d characters", maxTrackingLength)
		}
		fields["tracking_number"] = tn
	}
	if in.Note != nil {
		note := strings.TrimSpace(*in.Note)
		if len(note) > maxNoteLen {
			return nil, invalid("note", "must be at most %d characters", maxNoteLen)
		}
		fields["note"] = note
	}

	var (
		from    models.OrderStatus
		updated *models.Order
		now     = s.now().UTC()
	)
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().GetByID(ctx, in.OrderID)
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if o == nil {
			return ErrOrderNotFound
		}
		from = o.Status
		if !o.Status.CanTransitionTo(in.Status) {
			return &TransitionError{From: o.Status, To: in.Status}
		}

		if in.Status == models.OrderStatusCancelled {
			reason := ""
			if in.Note != nil {
				reason = strings.TrimSpace(*in.Note)
			}
			updated, err = s.reverse(ctx, tx, o, reason, fields, now)
			return err
		}

		ok, err := tx.Orders().TransitionStatus(ctx, o.ID, []models.OrderStatus{o.Status}, in.Status, fields)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !ok {
			return s.transitionConflict(ctx, tx, o, in.Status)
		}
		updated, err = s.reload(ctx, tx, o.ID)
		return err
	})
	if err != nil {
		failSpan(span, err)
		return nil, wrapTx("update order status", err)
	}

	s.log.Info("Статус заказа изменён",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("by", userID.String()),
		zap.String("role", string(role)))

	if updated.Status == models.OrderStatusCancelled {
		reason := ""
		if updated.CancelReason != nil {
			reason = *updated.CancelReason
		}
		s.afterCancel(ctx, updated, reason, now)
		return updated, nil
	}

	s.invalidateStats(ctx, updated.UserID)
	if s.events != nil {
		ev := OrderStatusChangedEvent{
			OrderID:     updated.ID,
			OrderNumber: updated.OrderNumber,
			UserID:      updated.UserID,
			From:        from,
			To:          updated.Status,
			ChangedAt:   now,
		}
		if updated.TrackingNumber != nil {
			ev.TrackingNumber = *updated.TrackingNumber
		}
		if err := s.events.PublishOrderStatusChanged(ctx, ev); err != nil {
			s.log.Warn("Не удалось опубликовать order.status_changed", zap.String("order_id", updated.ID.String()), zap.Error(err))
		}
	}
	return updated, nil
}

// reverse moves the order to cancelled and restores stock for all its lines.
// The status write is conditional, so only one concurrent caller restores stock.
func (s *orderService) reverse(ctx context.Context, tx repository.Store, o *models.Order, reason string, extra map[string]any, now time.Time) (*models.Order, error) {
	if !o.Status.CanTransitionTo(models.OrderStatusCancelled) {
		return nil, &TransitionError{From: o.Status, To: models.OrderStatusCancelled}
	}

	fields := map[string]any{"cancelled_at": now}
	for k, v := range extra {
		fields[k] = v
	}
	if reason != "" {
		fields["cancel_reason"] = reason
	}

	ok, err := tx.Orders().TransitionStatus(ctx, o.ID, models.SourcesFor(models.OrderStatusCancelled), models.OrderStatusCancelled, fields)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if !ok {
		return nil, s.transitionConflict(ctx, tx, o, models.OrderStatusCancelled)
	}

	items := o.Items
	if len(items) == 0 {
		if items, err = tx.OrderItems().GetByOrderID(ctx, o.ID); err != nil {
			return nil, fmt.Errorf("load order items: %w", err)
		}
	}
	if err := restoreStock(ctx, tx.Products(), items, s.log); err != nil {
		return nil, err
	}
	return s.reload(ctx, tx, o.ID)
}

// transitionConflict builds the error for a conditional update that matched no
// row: someone else moved the order first.
func (s *orderService) transitionConflict(ctx context.Context, tx repository.Store, o *models.Order, to models.OrderStatus) error {
	cur, err := tx.Orders().GetByID(ctx, o.ID)
	if err != nil {
		return fmt.Errorf("reload order: %w", err)
	}
	if cur == nil {
		return ErrOrderNotFound
	}
	return &TransitionError{From: cur.Status, To: to}
}

func (s *orderService) reload(ctx context.Context, tx repository.Store, id uuid.UUID) (*models.Order, error) {
	o, err := tx.Orders().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// loadOrder: admin видит любой заказ, остальные только свои.
func (s *orderService) loadOrder(ctx context.Context, st repository.Store, id, userID uuid.UUID, role Role) (*models.Order, error) {
	var (
		o   *models.Order
		err error
	)
	if role.isAdmin() {
		o, err = st.Orders().GetByID(ctx, id)
	} else {
		o, err = st.Orders().GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) afterCancel(ctx context.Context, o *models.Order, reason string, now time.Time) {
	s.invalidateStats(ctx, o.UserID)
	if s.events == nil {
		return
	}
	cancelledAt := now
	if o.CancelledAt != nil {
		cancelledAt = *o.CancelledAt
	}
	if err := s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Reason:      reason,
		Restocked:   itemEvents(o.Items),
		CancelledAt: cancelledAt,
	}); err != nil {
		s.log.Warn("Не удалось опубликовать order.cancelled", zap.String("order_id", o.ID.String()), zap.Error(err))
	}
}

func (s *orderService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStats(ctx, statsScopeAll, userID.String()); err != nil {
		s.log.Warn("Не удалось сбросить кэш статистики", zap.Error(err))
	}
}
