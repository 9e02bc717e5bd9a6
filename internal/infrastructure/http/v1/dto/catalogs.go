package dto

import (
	"fueldesk/internal/core/id"
	"fueldesk/internal/core/types"
	"fueldesk/internal/domain/catalogs/product"
	"fueldesk/internal/domain/catalogs/store"
	"fueldesk/internal/domain/catalogs/tank"
)

// --- Store ---

// CreateStoreRequest for creating a store.
type CreateStoreRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// ToStore maps the request onto a new Store.
func (r *CreateStoreRequest) ToStore() *store.Store {
	s := store.NewStore(r.Code, r.Name)
	s.Address = r.Address
	s.Phone = r.Phone
	return s
}

// UpdateStoreRequest for updating a store.
type UpdateStoreRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"isActive"`
	Version  int     `json:"version" binding:"required,min=1"`
}

// Apply maps the request onto the existing Store.
func (r *UpdateStoreRequest) Apply(s *store.Store) *store.Store {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	s.Version = r.Version
	return s
}

// --- Product ---

// CreateProductRequest for creating a fuel product.
type CreateProductRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	Unit     string `json:"unit"`
}

// ToProduct maps the request onto a new Product.
func (r *CreateProductRequest) ToProduct() *product.Product {
	p := product.NewProduct(r.Code, r.Name, product.Category(r.Category))
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	return p
}

// UpdateProductRequest for updating a fuel product.
type UpdateProductRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Unit     *string `json:"unit"`
	Version  int     `json:"version" binding:"required,min=1"`
}

// Apply maps the request onto the existing Product.
func (r *UpdateProductRequest) Apply(p *product.Product) *product.Product {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Category != nil {
		p.Category = product.Category(*r.Category)
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	p.Version = r.Version
	return p
}

// --- Tank ---

// CreateTankRequest for creating a tank.
type CreateTankRequest struct {
	Code             string         `json:"code"`
	Name             string         `json:"name" binding:"required"`
	StoreID          string         `json:"storeId" binding:"required,uuid"`
	ProductID        string         `json:"productId" binding:"required,uuid"`
	Capacity         types.Quantity `json:"capacity"`
	InitialStock     types.Quantity `json:"initialStock"`
	InitialStockDate *types.Date    `json:"initialStockDate"`
}

// ToTank maps the request onto a new Tank. ID parse errors are reported by
// the binding:"uuid" tag before this runs.
func (r *CreateTankRequest) ToTank() *tank.Tank {
	storeID, _ := id.Parse(r.StoreID)
	productID, _ := id.Parse(r.ProductID)

	t := tank.NewTank(r.Code, r.Name, storeID, productID)
	t.Capacity = r.Capacity
	t.InitialStock = r.InitialStock
	t.InitialStockDate = r.InitialStockDate
	return t
}

// UpdateTankRequest for updating a tank. Store, product and initial stock are
// immutable once set; only descriptive fields change.
type UpdateTankRequest struct {
	Name     *string         `json:"name"`
	Capacity *types.Quantity `json:"capacity"`
	IsActive *bool           `json:"isActive"`
	Version  int             `json:"version" binding:"required,min=1"`
}

// Apply maps the request onto the existing Tank.
func (r *UpdateTankRequest) Apply(t *tank.Tank) *tank.Tank {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Capacity != nil {
		t.Capacity = *r.Capacity
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	t.Version = r.Version
	return t
}
