package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var validTaxRates = []decimal.Decimal{decimal.Zero, decimal.NewFromInt(5), decimal.NewFromInt(19)}

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	store repository.Store
	tx    repository.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(store repository.Store, tx repository.TxRunner) *ProductUseCase {
	return &ProductUseCase{store: store, tx: tx}
}

// Create crea un nuevo producto. Cost inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	existing, err := uc.store.Products().GetByCompanyAndSKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	if err := validateProductValues(in.TaxRate, in.Price, in.ReorderPoint, in.WeightKg); err != nil {
		return nil, err
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "UND"
	}
	now := time.Now()
	product := &entity.Product{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		SKU:                sku,
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		Price:              in.Price,
		Cost:               decimal.Zero,
		TaxRate:            in.TaxRate,
		UnitMeasure:        in.UnitMeasure,
		ReorderPoint:       in.ReorderPoint,
		TrackBatches:       in.TrackBatches,
		RequiresInspection: in.RequiresInspection,
		ShelfLifeDays:      in.ShelfLifeDays,
		WeightKg:           in.WeightKg,
		Attributes:         in.Attributes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Products().Create(ctx, product); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "product", EntityID: product.ID,
			Action: entity.AuditCreate, After: toProductResponse(product), At: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto de la empresa.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// GetBySKU búsqueda exacta por SKU (lectores de código de barras en recepción).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, companyID, sku string) (*dto.ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil
	}
	product, err := uc.store.Products().GetByCompanyAndSKU(ctx, companyID, sku)
	if err != nil || product == nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, companyID, userID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, nil
	}
	before := toProductResponse(product)
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.TaxRate != nil {
		product.TaxRate = *in.TaxRate
	}
	if in.UnitMeasure != nil {
		product.UnitMeasure = *in.UnitMeasure
	}
	if in.ReorderPoint != nil {
		product.ReorderPoint = *in.ReorderPoint
	}
	if in.TrackBatches != nil {
		product.TrackBatches = *in.TrackBatches
	}
	if in.RequiresInspection != nil {
		product.RequiresInspection = *in.RequiresInspection
	}
	if in.ShelfLifeDays != nil {
		product.ShelfLifeDays = *in.ShelfLifeDays
	}
	if in.WeightKg != nil {
		product.WeightKg = *in.WeightKg
	}
	if len(in.Attributes) > 0 {
		product.Attributes = in.Attributes
	}
	if err := validateProductValues(product.TaxRate, product.Price, product.ReorderPoint, product.WeightKg); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		if err := s.Products().Update(ctx, product); err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: companyID, UserID: userID, EntityType: "product", EntityID: product.ID,
			Action: entity.AuditUpdate, Before: before, After: toProductResponse(product), At: product.UpdatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos por empresa con paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.store.Products().ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func validateProductValues(taxRate, price, reorder, weight decimal.Decimal) error {
	valid := false
	for _, r := range validTaxRates {
		if taxRate.Equal(r) {
			valid = true
		}
	}
	if !valid || price.IsNegative() || reorder.IsNegative() || weight.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                 p.ID,
		CompanyID:          p.CompanyID,
		SKU:                p.SKU,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		Cost:               p.Cost,
		TaxRate:            p.TaxRate,
		UnitMeasure:        p.UnitMeasure,
		ReorderPoint:       p.ReorderPoint,
		TrackBatches:       p.TrackBatches,
		RequiresInspection: p.RequiresInspection,
		ShelfLifeDays:      p.ShelfLifeDays,
		WeightKg:           p.WeightKg,
		Attributes:         p.Attributes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
