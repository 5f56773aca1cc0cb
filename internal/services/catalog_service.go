package services

import (
	"candela/internal/domain"
	"candela/internal/repos"
	"candela/internal/stock"
)

// CatalogService assembles products from the catalog and derives the stock
// fields (stockStatus, isAvailable) that are never stored independently of
// their source quantity.
type CatalogService struct {
	Repo      *repos.CatalogRepo
	Threshold int
}

func NewCatalogService(repo *repos.CatalogRepo, threshold int) *CatalogService {
	return &CatalogService{Repo: repo, Threshold: threshold}
}

func (s *CatalogService) decorate(p *domain.Product) {
	for i := range p.Variants {
		v := &p.Variants[i]
		v.StockStatus = stock.Calculate(v.StockQuantity, s.Threshold)
		v.IsAvailable = stock.Available(v.StockQuantity)
	}
}

// Get returns the product with derived stock fields on every variant.
func (s *CatalogService) Get(id string) (domain.Product, error) {
	p, err := s.Repo.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	s.decorate(&p)
	return p, nil
}

// List returns all active products with derived stock fields.
func (s *CatalogService) List() ([]domain.Product, error) {
	products, err := s.Repo.List()
	if err != nil {
		return nil, err
	}
	for i := range products {
		s.decorate(&products[i])
	}
	return products, nil
}

// Availability reports the stock status for a variant, or an aggregate for
// the whole product when no variant is named: the best status among
// variants with the summed quantity, falling back to the product-level
// flag for variantless products.
func (s *CatalogService) Availability(productID, variantID string) (domain.Availability, error) {
	p, err := s.Repo.Get(productID)
	if err != nil {
		return domain.Availability{}, err
	}

	if variantID != "" {
		for _, v := range p.Variants {
			if v.ID == variantID {
				return domain.Availability{
					Status: stock.Calculate(v.StockQuantity, s.Threshold),
					Qty:    v.Quantity(),
				}, nil
			}
		}
		return domain.Availability{Status: stock.OutOfStock}, nil
	}

	if p.HasVariants() {
		best := stock.OutOfStock
		total := 0
		for _, v := range p.Variants {
			st := stock.Calculate(v.StockQuantity, s.Threshold)
			total += v.Quantity()
			if st == stock.InStock || (st == stock.LowStock && best == stock.OutOfStock) {
				best = st
			}
		}
		return domain.Availability{Status: best, Qty: total}, nil
	}

	if p.InStock == nil || *p.InStock {
		return domain.Availability{Status: stock.InStock}, nil
	}
	return domain.Availability{Status: stock.OutOfStock}, nil
}
