package memstore

import (
	"context"

	"github.com/sonar-vaibhav/dpu-procurement/internal/procurement/entity"
)

// Seed loads a small set of development fixtures: three active vendors and
// one submitted indent. Used when the server runs without a database.
func Seed(s *Store) error {
	ctx := context.Background()
	stores := s.Stores()

	vendors := []*entity.Vendor{
		{
			ID:            "ven-tech-001",
			Code:          "VEN-2026-0001",
			Name:          "TechnoLab Instruments",
			Categories:    entity.StringArray{"lab-equipment", "electronics"},
			Status:        entity.VendorStatusActive,
			ContactPerson: "S. Kulkarni",
			Email:         "sales@technolab.example.in",
			Phone:         "+91-20-2612-0001",
			Address:       "MIDC Bhosari, Pune",
			GSTIN:         "27AAACT1234F1Z5",
		},
		{
			ID:            "ven-sci-002",
			Code:          "VEN-2026-0002",
			Name:          "Scientific Traders Co",
			Categories:    entity.StringArray{"lab-equipment", "chemicals"},
			Status:        entity.VendorStatusActive,
			ContactPerson: "R. Deshmukh",
			Email:         "info@scitraders.example.in",
			Phone:         "+91-20-2612-0002",
			Address:       "Shivaji Nagar, Pune",
			GSTIN:         "27AABCS5678K1Z2",
		},
		{
			ID:            "ven-off-003",
			Code:          "VEN-2026-0003",
			Name:          "Orbit Office Supplies",
			Categories:    entity.StringArray{"stationery", "furniture"},
			Status:        entity.VendorStatusActive,
			ContactPerson: "A. Nair",
			Email:         "orders@orbitoffice.example.in",
			Phone:         "+91-20-2612-0003",
			Address:       "Pimpri, Pune",
			GSTIN:         "27AADCO9012M1Z8",
		},
	}
	for _, v := range vendors {
		if err := stores.Vendors.Create(ctx, v); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.seq["VEN"] = len(vendors)
	s.mu.Unlock()

	ind := &entity.Indent{
		ID:            "ind-seed-001",
		Code:          "IND-2026-0001",
		Title:         "Microcontroller trainer kits for embedded lab",
		Department:    "electronics",
		BudgetHead:    "lab-development",
		Priority:      entity.PriorityHigh,
		Justification: "Existing kits are eight years old and no longer supported.",
		RequestedBy:   "user-seed-faculty",
		Status:        entity.PendingStatus("hod"),
		Items: []entity.IndentItem{
			{
				ID:          "indi-seed-001",
				IndentID:    "ind-seed-001",
				ItemName:    "ARM Cortex-M4 trainer kit",
				Make:        "Embedded Workbench",
				Quantity:    5,
				UOM:         "nos",
				ApproxValue: 125000,
				Purpose:     "Embedded systems lab sessions",
				SortOrder:   1,
			},
		},
	}
	if err := stores.Indents.Create(ctx, ind); err != nil {
		return err
	}
	s.mu.Lock()
	s.seq["IND"] = 1
	s.mu.Unlock()

	return nil
}
