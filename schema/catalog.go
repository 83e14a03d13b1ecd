package schema

import "maps"

// ReferenceSpec declares a foreign key that is denormalized at write time.
// IDField holds the foreign _id supplied by the caller, StubField receives the
// embedded stub, and Source names the sibling entity to look the id up in.
type ReferenceSpec struct {
	IDField   string
	StubField string
	Source    string
}

// EntitySpec describes one cached entity type.
type EntitySpec struct {
	Name         string         // Catalog name, e.g. "warehouses"
	ResourcePath string         // REST resource under /api/
	StorageKey   string         // Offline durable store key
	IDPrefix     string         // Code prefix for offline synthesis; empty disables codes
	Defaults     Record         // Fields applied to offline-created records
	References   []ReferenceSpec
}

// DefaultsCopy returns a fresh copy of the entity defaults.
func (e EntitySpec) DefaultsCopy() Record {
	if e.Defaults == nil {
		return Record{}
	}
	return maps.Clone(e.Defaults)
}

// active is the default applied to master-data records.
var active = Record{"isActive": true}

// entity builds a definition whose resource path and storage key equal its name.
func entity(name, prefix string, defaults Record, refs ...ReferenceSpec) EntitySpec {
	return EntitySpec{
		Name:         name,
		ResourcePath: name,
		StorageKey:   name,
		IDPrefix:     prefix,
		Defaults:     defaults,
		References:   refs,
	}
}

// ref is shorthand for a ReferenceSpec following the fooId -> foo convention.
func ref(stubField, source string) ReferenceSpec {
	return ReferenceSpec{IDField: stubField + "Id", StubField: stubField, Source: source}
}

// Catalog lists every entity the application caches.
// Entities referenced by others appear before their dependents, but load
// order carries no meaning: references are resolved at write time only.
var Catalog = []EntitySpec{
	// CRM
	entity("contacts", "CON", active),
	entity("customers", "CUS", active),
	entity("vendors", "VEN", active),
	entity("leads", "LD", Record{"status": "new"}, ref("contact", "contacts")),
	entity("deals", "DL", Record{"stage": "open"}, ref("contact", "contacts"), ref("customer", "customers")),
	entity("quotations", "QT", Record{"status": "draft"}, ref("customer", "customers"), ref("deal", "deals")),

	// HR
	entity("branches", "BR", active),
	entity("departments", "DEP", active, ref("branch", "branches")),
	entity("designations", "DSG", active),
	entity("employees", "EMP", active, ref("department", "departments"), ref("designation", "designations")),
	entity("attendance", "", nil, ref("employee", "employees")),
	entity("leaves", "LV", Record{"status": "pending"}, ref("employee", "employees")),
	entity("payroll", "PAY", Record{"status": "draft"}, ref("employee", "employees")),

	// Inventory
	entity("warehouses", "WH", active),
	entity("categories", "CAT", active),
	entity("units", "", active),
	entity("products", "PRD", active, ref("category", "categories"), ref("unit", "units")),
	entity("stock-adjustments", "ADJ", nil, ref("warehouse", "warehouses"), ref("product", "products")),
	entity("stock-transfers", "TRF", Record{"status": "pending"},
		ReferenceSpec{IDField: "fromWarehouseId", StubField: "fromWarehouse", Source: "warehouses"},
		ReferenceSpec{IDField: "toWarehouseId", StubField: "toWarehouse", Source: "warehouses"},
	),

	// Purchasing
	entity("purchase-orders", "PO", Record{"status": "draft"}, ref("vendor", "vendors"), ref("warehouse", "warehouses")),
	entity("goods-receipts", "GRN", nil, ref("purchaseOrder", "purchase-orders"), ref("warehouse", "warehouses")),
	entity("purchase-invoices", "PI", Record{"status": "unpaid"}, ref("vendor", "vendors"), ref("purchaseOrder", "purchase-orders")),
	entity("purchase-returns", "PR", nil, ref("vendor", "vendors"), ref("purchaseInvoice", "purchase-invoices")),

	// Sales
	entity("sale-orders", "SO", Record{"status": "draft"}, ref("customer", "customers"), ref("warehouse", "warehouses")),
	entity("deliveries", "DN", nil, ref("saleOrder", "sale-orders"), ref("warehouse", "warehouses")),
	entity("sale-invoices", "SI", Record{"status": "unpaid"}, ref("customer", "customers"), ref("saleOrder", "sale-orders")),
	entity("sale-returns", "SR", nil, ref("customer", "customers"), ref("saleInvoice", "sale-invoices")),

	// Finance
	entity("accounts", "ACC", active),
	entity("taxes", "TAX", active),
	entity("journal-entries", "JV", nil, ref("account", "accounts")),
	entity("payments", "PMT", nil, ref("vendor", "vendors"), ref("account", "accounts")),
	entity("receipts", "RCT", nil, ref("customer", "customers"), ref("account", "accounts")),
	entity("expenses", "EXP", nil, ref("account", "accounts"), ref("employee", "employees")),

	// Assets
	entity("asset-categories", "AC", active),
	entity("assets", "AST", active, ref("category", "asset-categories"), ref("assignee", "employees")),
	entity("maintenance", "MNT", Record{"status": "scheduled"}, ref("asset", "assets")),

	// Work
	entity("projects", "PRJ", Record{"status": "active"}, ref("customer", "customers")),
	entity("tasks", "TSK", Record{"status": "todo"}, ref("project", "projects"), ref("assignee", "employees")),
	entity("tickets", "TKT", Record{"status": "open"}, ref("customer", "customers"), ref("assignee", "employees")),
}

// LookupEntity returns the catalog entry with the given name.
func LookupEntity(name string) (EntitySpec, bool) {
	for _, e := range Catalog {
		if e.Name == name {
			return e, true
		}
	}
	return EntitySpec{}, false
}

// EntityNames returns the catalog names in declaration order.
func EntityNames() []string {
	names := make([]string, 0, len(Catalog))
	for _, e := range Catalog {
		names = append(names, e.Name)
	}
	return names
}
