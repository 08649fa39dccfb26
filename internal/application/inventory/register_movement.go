package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ApplyFromRequest adapta el request HTTP al motor Apply(ctx, ApplyInput).
// El tipo se valida aquí, en la frontera: un string desconocido nunca llega a la lógica de negocio.
func (e *ReconciliationEngine) ApplyFromRequest(ctx context.Context, actorID string, in dto.StockAdjustmentRequest) (*ApplyResult, error) {
	movementType, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return nil, domain.NewValidationError("type", err.Error())
	}
	return e.Apply(ctx, ApplyInput{
		ProductID:     strings.TrimSpace(in.ProductID),
		Type:          movementType,
		QuantityDelta: in.Quantity,
		UnitCost:      in.UnitCost,
		Note:          strings.TrimSpace(in.Note),
		Reason:        strings.TrimSpace(in.Reason),
		SkipCashbook:  in.SkipCashbook,
		ActorID:       actorID,
	})
}

// ToAdjustmentResponse arma la respuesta del endpoint; los avisos se localizan en la capa HTTP.
func ToAdjustmentResponse(res *ApplyResult) dto.StockAdjustmentResponse {
	m := res.Movement
	return dto.StockAdjustmentResponse{
		MovementID:    m.ID,
		ProductID:     m.ProductID,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		CreatedAt:     m.CreatedAt,
		AppliedDelta:  res.AppliedDelta,
		Clamped:       res.Clamped,
		LowStock:      res.LowStock,
	}
}

// ToMovementDTO convierte un movimiento al formato de la API.
func ToMovementDTO(m *entity.StockMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Type:         m.Type.String(),
		Quantity:     m.QuantityDelta,
		PreviousQty:  m.BalanceBefore,
		NewQty:       m.BalanceAfter,
		CostPerUnit:  m.UnitCost,
		Reason:       m.Reason,
		Notes:        m.Note,
		SkipCashbook: m.SkipCashbook,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}
