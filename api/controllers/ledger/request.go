package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorhub/ledger-backend/internal/commission"
	internalledger "github.com/vendorhub/ledger-backend/internal/ledger"
	"github.com/vendorhub/ledger-backend/pkg/enums"
	pkgerrors "github.com/vendorhub/ledger-backend/pkg/errors"
	"github.com/vendorhub/ledger-backend/pkg/types"
)

type vendorProfilePayload struct {
	CommissionRate   *decimal.Decimal `json:"commission_rate"`
	CommissionType   string           `json:"commission_type" validate:"omitempty,oneof=percentage fixed"`
	SubscriptionTier string           `json:"subscription_tier" validate:"omitempty,oneof=standard gold platinum"`
}

type createTransactionRequest struct {
	OrderID          string               `json:"order_id" validate:"required,uuid"`
	OrderNumber      string               `json:"order_number" validate:"required"`
	VendorID         string               `json:"vendor_id" validate:"required,uuid"`
	ProductID        string               `json:"product_id" validate:"required,uuid"`
	ProductName      string               `json:"product_name" validate:"required"`
	ProductSKU       string               `json:"product_sku" validate:"required"`
	Quantity         int                  `json:"quantity" validate:"required,gt=0"`
	UnitPrice        decimal.Decimal      `json:"unit_price" validate:"required"`
	Currency         string               `json:"currency" validate:"omitempty,oneof=USD CAD EUR"`
	LotNumber        int                  `json:"lot_number" validate:"omitempty,min=0"`
	VariationID      *string              `json:"variation_id" validate:"omitempty,uuid"`
	VariationDetails *types.JSONMap       `json:"variation_details"`
	Fees             types.FeeBreakdown   `json:"fees"`
	Vendor           vendorProfilePayload `json:"vendor"`
}

func (req *createTransactionRequest) toInput(actorID string) (internalledger.CreateFromSaleInput, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return internalledger.CreateFromSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return internalledger.CreateFromSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return internalledger.CreateFromSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}

	var variationID *uuid.UUID
	if req.VariationID != nil {
		parsed, err := uuid.Parse(*req.VariationID)
		if err != nil {
			return internalledger.CreateFromSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation id")
		}
		variationID = &parsed
	}

	return internalledger.CreateFromSaleInput{
		OrderID:          orderID,
		OrderNumber:      req.OrderNumber,
		VendorID:         vendorID,
		ProductID:        productID,
		ProductName:      req.ProductName,
		ProductSKU:       req.ProductSKU,
		Quantity:         req.Quantity,
		UnitPrice:        req.UnitPrice,
		Currency:         enums.Currency(req.Currency),
		LotNumber:        req.LotNumber,
		VariationID:      variationID,
		VariationDetails: req.VariationDetails,
		Fees:             req.Fees,
		Vendor: commission.VendorProfile{
			VendorID:         vendorID,
			CommissionRate:   req.Vendor.CommissionRate,
			CommissionType:   enums.CommissionType(req.Vendor.CommissionType),
			SubscriptionTier: enums.SubscriptionTier(req.Vendor.SubscriptionTier),
		},
		ActorID: actorID,
	}, nil
}

type refundRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   string          `json:"note" validate:"omitempty,max=500"`
}

type disputeRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type resolveDisputeRequest struct {
	FavorVendor bool `json:"favor_vendor"`
}

type cancelRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type reserveRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type releaseRequest struct {
	WithdrawalID string `json:"withdrawal_id" validate:"required,uuid"`
}

type sweepRequest struct {
	BatchSize int `json:"batch_size" validate:"omitempty,min=1,max=5000"`
}
