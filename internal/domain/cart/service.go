package cart

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"workshop/internal/domain"
)

// TaxRate is the fixed VAT applied on top of the cart subtotal.
const TaxRate = 0.11

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type View struct {
	Spareparts []domain.CartLine `json:"spareparts"`
	Services   []domain.CartLine `json:"services"`
	Totals     Totals            `json:"totals"`
}

// AddItem captures the current discount-adjusted catalog price and
// merges the item into the draft. Sparepart duplicates merge by summing
// quantity; a duplicate service is rejected without mutating the cart.
func (s *Service) AddItem(ctx context.Context, userID int64, kind domain.ItemKind, itemID int64, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		quantity = 1
	}

	var name string
	var unitPrice float64

	switch kind {
	case domain.KindSparepart:
		part, err := s.repo.GetSparepart(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		name = part.Name
		unitPrice = part.DiscountedPrice()
	case domain.KindService:
		svc, err := s.repo.GetServiceOffering(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		name = svc.Name
		unitPrice = svc.DiscountedPrice()
		quantity = 1
	default:
		return nil, ErrInvalidKind
	}

	existing, err := s.repo.FindLine(ctx, userID, kind, itemID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if kind == domain.KindService {
			return nil, ErrDuplicateItem
		}
		// Merge: quantity accumulates, the originally captured price wins.
		existing.Quantity += quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, err
		}
		return existing, nil
	}

	pos, err := s.repo.NextPosition(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	line := &domain.CartLine{
		UserID:    userID,
		Kind:      kind,
		ItemID:    itemID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Position:  pos,
	}
	if err := s.repo.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveItem deletes the index-th line of the given kind.
func (s *Service) RemoveItem(ctx context.Context, userID int64, kind domain.ItemKind, index int) error {
	if kind != domain.KindSparepart && kind != domain.KindService {
		return ErrInvalidKind
	}
	lines, err := s.repo.LinesByKind(ctx, userID, kind)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(lines) {
		return ErrLineNotFound
	}
	return s.repo.Delete(ctx, lines[index].ID)
}

// UpdateQuantity applies a delta to the index-th sparepart line. A delta
// that would push quantity below 1 is silently ignored.
func (s *Service) UpdateQuantity(ctx context.Context, userID int64, index, delta int) (*domain.CartLine, error) {
	lines, err := s.repo.LinesByKind(ctx, userID, domain.KindSparepart)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(lines) {
		return nil, ErrLineNotFound
	}

	line := lines[index]
	next := line.Quantity + delta
	if next < 1 {
		return &line, nil
	}

	if err := s.repo.UpdateQuantity(ctx, line.ID, next); err != nil {
		return nil, err
	}
	line.Quantity = next
	return &line, nil
}

// Get assembles the customer-facing cart view with totals.
func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	parts, err := s.repo.LinesByKind(ctx, userID, domain.KindSparepart)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.LinesByKind(ctx, userID, domain.KindService)
	if err != nil {
		return nil, err
	}

	all := append(append([]domain.CartLine{}, parts...), services...)
	return &View{
		Spareparts: parts,
		Services:   services,
		Totals:     ComputeTotals(all),
	}, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

// ComputeTotals sums the lines and applies the fixed tax, rounded to the
// nearest whole currency unit.
func ComputeTotals(lines []domain.CartLine) Totals {
	var subtotal float64
	for _, l := range lines {
		qty := l.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal += l.UnitPrice * float64(qty)
	}
	tax := math.Round(subtotal * TaxRate)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}
