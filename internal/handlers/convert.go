package handlers

import (
	"fmt"

	"github.com/trunghai04/webmoi-sub001/internal/dto"
	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/service"

	"github.com/google/uuid"
)

func toPlaceOrderInput(req dto.CreateOrderRequest) (service.PlaceOrderInput, error) {
	in := service.PlaceOrderInput{
		Items: make([]service.LineItemInput, 0, len(req.Items)),
		ShippingAddress: service.Address{
			FullName:    req.ShippingAddress.FullName,
			Phone:       req.ShippingAddress.Phone,
			Email:       req.ShippingAddress.Email,
			AddressLine: req.ShippingAddress.AddressLine,
			Ward:        req.ShippingAddress.Ward,
			District:    req.ShippingAddress.District,
			City:        req.ShippingAddress.City,
			PostalCode:  req.ShippingAddress.PostalCode,
		},
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		ShippingMethod: models.ShippingMethod(req.ShippingMethod),
		Subtotal:       req.Subtotal,
		ShippingFee:    req.ShippingFee,
		Tax:            req.Tax,
		Total:          req.Total,
		Note:           req.Note,
	}
	for i, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return in, &service.ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "must be a valid uuid"}
		}
		in.Items = append(in.Items, service.LineItemInput{
			ProductID: pid,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Name:      it.Name,
			Image:     it.Image,
		})
	}
	return in, nil
}

func toOrderResponse(o *models.Order, addr *service.Address) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             o.ID.String(),
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID.String(),
		Status:         string(o.Status),
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		Tax:            o.Tax,
		Total:          o.Total,
		PaymentMethod:  string(o.PaymentMethod),
		ShippingMethod: string(o.ShippingMethod),
		Note:           o.Note,
		TrackingNumber: o.TrackingNumber,
		CancelReason:   o.CancelReason,
		CancelledAt:    o.CancelledAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	if addr != nil {
		resp.ShippingAddress = &dto.AddressResponse{
			FullName:    addr.FullName,
			Phone:       addr.Phone,
			Email:       addr.Email,
			AddressLine: addr.AddressLine,
			Ward:        addr.Ward,
			District:    addr.District,
			City:        addr.City,
			PostalCode:  addr.PostalCode,
		}
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:    it.ProductID.String(),
			ProductName:  it.ProductName,
			ProductImage: it.ProductImage,
			UnitPrice:    it.UnitPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.LineTotal,
		})
	}
	return resp
}

func toOrderListResponse(p *service.OrderPage) dto.OrderListResponse {
	resp := dto.OrderListResponse{
		Orders: make([]dto.OrderSummaryResponse, 0, len(p.Orders)),
		Total:  p.Total,
		Page:   p.Page,
		Limit:  p.Limit,
	}
	for _, o := range p.Orders {
		resp.Orders = append(resp.Orders, dto.OrderSummaryResponse{
			ID:             o.ID.String(),
			OrderNumber:    o.OrderNumber,
			UserID:         o.UserID.String(),
			Status:         string(o.Status),
			Total:          o.Total,
			PaymentMethod:  string(o.PaymentMethod),
			ShippingMethod: string(o.ShippingMethod),
			ItemCount:      o.ItemCount,
			TotalQuantity:  o.TotalQuantity,
			CreatedAt:      o.CreatedAt,
		})
	}
	return resp
}

func toStatsResponse(s *service.Stats) dto.OrderStatsResponse {
	resp := dto.OrderStatsResponse{
		ByStatus:    make([]dto.StatusStatsResponse, 0, len(s.ByStatus)),
		TotalOrders: s.TotalOrders,
		Revenue:     s.Revenue,
	}
	for _, st := range s.ByStatus {
		resp.ByStatus = append(resp.ByStatus, dto.StatusStatsResponse{
			Status: string(st.Status),
			Count:  st.Count,
			Amount: st.Amount,
		})
	}
	return resp
}

func toCartResponse(c *service.Cart) dto.CartResponse {
	resp := dto.CartResponse{
		Items:         make([]dto.CartLineResponse, 0, len(c.Items)),
		TotalQuantity: c.TotalQuantity,
		Subtotal:      c.Subtotal,
	}
	for _, l := range c.Items {
		resp.Items = append(resp.Items, dto.CartLineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			Image:     l.Image,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Stock:     l.Stock,
			IsActive:  l.IsActive,
			LineTotal: l.LineTotal,
		})
	}
	return resp
}

func toCartValidationResponse(v *service.CartValidation) dto.CartValidationResponse {
	resp := dto.CartValidationResponse{
		Valid:  v.Valid,
		Issues: make([]dto.CartIssueResponse, 0, len(v.Issues)),
	}
	for _, is := range v.Issues {
		resp.Issues = append(resp.Issues, dto.CartIssueResponse{
			ProductID: is.ProductID.String(),
			Kind:      string(is.Kind),
			Requested: is.Requested,
			Available: is.Available,
		})
	}
	return resp
}
