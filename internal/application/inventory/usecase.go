package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/erp-api/internal/application/dto"
	"github.com/jhoicas/erp-api/internal/application/shared"
	"github.com/jhoicas/erp-api/internal/domain"
	"github.com/jhoicas/erp-api/internal/domain/entity"
	"github.com/jhoicas/erp-api/internal/domain/inventory"
	"github.com/jhoicas/erp-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// RegisterMovementUseCase registra movimientos manuales de inventario (IN, OUT, ADJUSTMENT, TRANSFER)
// en una transacción con bloqueo de fila (SELECT FOR UPDATE). Las salidas consumen lotes por FEFO.
type RegisterMovementUseCase struct {
	store  repository.Store
	tx     repository.TxRunner
	engine *Engine
	now    func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(store repository.Store, tx repository.TxRunner, engine *Engine) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{store: store, tx: tx, engine: engine, now: time.Now}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// Para IN/OUT/ADJUSTMENT: ProductID, WarehouseID, Type, Quantity; UnitCost obligatorio en IN.
// Para TRANSFER: ProductID, FromWarehouseID, ToWarehouseID, Type=TRANSFER, Quantity.
type MovementInputDTO struct {
	CompanyID       string
	UserID          string
	ProductID       string
	WarehouseID     string
	FromWarehouseID string
	ToWarehouseID   string
	Type            string
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (string, error) {
	return uc.RegisterMovement(ctx, MovementInputDTO{
		CompanyID:       companyID,
		UserID:          userID,
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
	})
}

// RegisterMovement valida la entrada, aplica el movimiento y devuelve el ID de transacción
// que agrupa los registros del kardex.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (string, error) {
	switch input.Type {
	case entity.MovementIn, entity.MovementOut, entity.MovementAdjustment:
		if input.ProductID == "" || input.WarehouseID == "" || input.Quantity.IsZero() {
			return "", domain.ErrInvalidInput
		}
		if input.Type == entity.MovementIn && (input.UnitCost == nil || input.UnitCost.IsNegative()) {
			return "", domain.ErrInvalidInput
		}
		if input.Type != entity.MovementAdjustment && input.Quantity.IsNegative() {
			return "", domain.ErrInvalidInput
		}
	case entity.MovementTransfer:
		if input.ProductID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
			return "", domain.ErrInvalidInput
		}
		if input.FromWarehouseID == input.ToWarehouseID || !input.Quantity.GreaterThan(decimal.Zero) {
			return "", domain.ErrInvalidInput
		}
	default:
		return "", domain.ErrInvalidInput
	}

	product, err := uc.store.Products().GetByID(ctx, input.ProductID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", domain.ErrNotFound
	}
	if product.CompanyID != input.CompanyID {
		return "", domain.ErrForbidden
	}
	warehouses := []string{input.WarehouseID}
	if input.Type == entity.MovementTransfer {
		warehouses = []string{input.FromWarehouseID, input.ToWarehouseID}
	}
	for _, id := range warehouses {
		wh, err := uc.store.Warehouses().GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if wh == nil || wh.CompanyID != input.CompanyID {
			return "", domain.ErrNotFound
		}
	}

	now := uc.now()
	txID := uuid.New().String()
	err = uc.tx.Run(ctx, func(s repository.Store) error {
		// el producto se relee dentro de la transacción para tomar el costo vigente
		p, err := s.Products().GetByID(ctx, input.ProductID)
		if err != nil {
			return err
		}
		switch input.Type {
		case entity.MovementIn:
			err = uc.doIN(ctx, s, p, input, *input.UnitCost, entity.MovementIn, now, txID)
		case entity.MovementOut:
			err = uc.doOUT(ctx, s, input, input.Quantity, entity.MovementOut, now, txID)
		case entity.MovementAdjustment:
			err = uc.doADJUSTMENT(ctx, s, p, input, now, txID)
		case entity.MovementTransfer:
			err = uc.doTRANSFER(ctx, s, p, input, now, txID)
		}
		if err != nil {
			return err
		}
		return shared.Record(ctx, s, shared.AuditEntry{
			CompanyID: input.CompanyID, UserID: input.UserID, EntityType: "inventory_movement", EntityID: txID,
			Action: entity.AuditCreate, After: input, At: now,
		})
	})
	if err != nil {
		return "", err
	}
	return txID, nil
}

// doIN crea un lote liberado al costo indicado y recalcula el costo promedio.
func (uc *RegisterMovementUseCase) doIN(ctx context.Context, s repository.Store, p *entity.Product, input MovementInputDTO,
	unitCost decimal.Decimal, movType string, now time.Time, txID string,
) error {
	_, err := uc.engine.Receive(ctx, s, ReceiveInput{
		CompanyID:     input.CompanyID,
		UserID:        input.UserID,
		TransactionID: txID,
		Product:       p,
		WarehouseID:   input.WarehouseID,
		Quantity:      input.Quantity,
		UnitCost:      unitCost,
		MovementType:  movType,
		Now:           now,
	})
	return err
}

// doOUT consume lotes por FEFO; sin saldo suficiente devuelve ErrInsufficientStock.
func (uc *RegisterMovementUseCase) doOUT(ctx context.Context, s repository.Store, input MovementInputDTO,
	qty decimal.Decimal, movType string, now time.Time, txID string,
) error {
	_, err := uc.engine.Issue(ctx, s, IssueInput{
		CompanyID:     input.CompanyID,
		UserID:        input.UserID,
		TransactionID: txID,
		ProductID:     input.ProductID,
		WarehouseID:   input.WarehouseID,
		Quantity:      qty,
		Strategy:      inventory.StrategyFEFO,
		MovementType:  movType,
		Now:           now,
	})
	return err
}

// doADJUSTMENT: positivo como IN (al costo dado o al promedio), negativo como OUT.
func (uc *RegisterMovementUseCase) doADJUSTMENT(ctx context.Context, s repository.Store, p *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	if input.Quantity.GreaterThan(decimal.Zero) {
		unitCost := p.Cost
		if input.UnitCost != nil {
			unitCost = *input.UnitCost
		}
		return uc.doIN(ctx, s, p, input, unitCost, entity.MovementAdjustment, now, txID)
	}
	return uc.doOUT(ctx, s, input, input.Quantity.Neg(), entity.MovementAdjustment, now, txID)
}

// doTRANSFER saca los lotes de la bodega origen y los recrea en destino con el mismo número,
// fechas y costo; el costo promedio no cambia.
func (uc *RegisterMovementUseCase) doTRANSFER(ctx context.Context, s repository.Store, p *entity.Product, input MovementInputDTO, now time.Time, txID string) error {
	res, err := uc.engine.Issue(ctx, s, IssueInput{
		CompanyID:     input.CompanyID,
		UserID:        input.UserID,
		TransactionID: txID,
		ProductID:     input.ProductID,
		WarehouseID:   input.FromWarehouseID,
		Quantity:      input.Quantity,
		Strategy:      inventory.StrategyFEFO,
		MovementType:  entity.MovementTransfer,
		Now:           now,
	})
	if err != nil {
		return err
	}
	for _, d := range res.Deductions {
		src, err := s.Batches().GetByID(ctx, d.BatchID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.ErrNotFound
		}
		_, err = uc.engine.Receive(ctx, s, ReceiveInput{
			CompanyID:     input.CompanyID,
			UserID:        input.UserID,
			TransactionID: txID,
			Product:       p,
			WarehouseID:   input.ToWarehouseID,
			Quantity:      d.Quantity,
			UnitCost:      d.UnitCost,
			MovementType:  entity.MovementTransfer,
			Batch: &entity.Batch{
				BatchNumber:    src.BatchNumber,
				ManufacturedAt: src.ManufacturedAt,
				ExpiresAt:      src.ExpiresAt,
				ReceivedAt:     src.ReceivedAt,
				Status:         entity.BatchStatusReleased,
				SourceType:     "TRANSFER",
				SourceID:       src.ID,
			},
			KeepCost: true,
			Now:      now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
