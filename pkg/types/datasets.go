package types

// Standard dataset names for Store.Dataset.
const (
	DatasetStock   = "stock"
	DatasetSales   = "sales"
	DatasetRepairs = "repairs"
	DatasetUsers   = "users"
)

// StandardDatasetNames lists the standard datasets in initialization order.
var StandardDatasetNames = []string{
	DatasetStock,
	DatasetSales,
	DatasetRepairs,
	DatasetUsers,
}

// Column names shared by the POS and auth layers.
const (
	ColBarcode      = "Barcode"
	ColProductName  = "Product Name"
	ColCategory     = "Category"
	ColSellingPrice = "Selling Price"
	ColStock        = "Stock"
	ColMinStock     = "Min_Stock"
	ColImageURL     = "Image_URL"
	ColDescription  = "Description"

	ColInvoiceID = "Invoice_ID"
	ColTimestamp = "Timestamp"
	ColItem      = "Item"
	ColTotal     = "Total"
	ColStaff     = "Staff"
	ColPayment   = "Payment"

	ColRepairID  = "Repair_ID"
	ColCustPhone = "Cust_Phone"
	ColDevice    = "Device"
	ColIssue     = "Issue"
	ColStatus    = "Status"
	ColPrice     = "Price"

	ColUsername = "username"
	ColPassword = "password"
	ColRole     = "role"
)

// Roles recorded in the users dataset.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// DefaultMinStock is the reorder threshold given to items that declare none.
const DefaultMinStock = 5.0

// RepairStatusReceived is the status of a freshly logged repair.
const RepairStatusReceived = "Received"

// StandardSchemas returns the schema of every standard dataset keyed by name.
// A fresh map is returned on each call so callers may not mutate shared state.
func StandardSchemas() map[string]Schema {
	return map[string]Schema{
		DatasetStock: {
			Dataset: DatasetStock,
			File:    "stock.csv",
			Key:     ColBarcode,
			Columns: []Column{
				{Name: ColBarcode, Kind: KindText, Default: ""},
				{Name: ColProductName, Kind: KindText},
				{Name: ColCategory, Kind: KindText},
				{Name: ColSellingPrice, Kind: KindNumeric},
				{Name: ColStock, Kind: KindNumeric},
				{Name: ColMinStock, Kind: KindNumeric, Default: DefaultMinStock},
				{Name: ColImageURL, Kind: KindText, Default: ""},
				{Name: ColDescription, Kind: KindText, Default: ""},
			},
		},
		DatasetSales: {
			Dataset: DatasetSales,
			File:    "sales.csv",
			Key:     ColInvoiceID,
			Columns: []Column{
				{Name: ColInvoiceID, Kind: KindText},
				{Name: ColTimestamp, Kind: KindText},
				{Name: ColItem, Kind: KindText},
				{Name: ColTotal, Kind: KindNumeric},
				{Name: ColStaff, Kind: KindText},
				{Name: ColPayment, Kind: KindText},
			},
		},
		DatasetRepairs: {
			Dataset: DatasetRepairs,
			File:    "repairs.csv",
			Key:     ColRepairID,
			Columns: []Column{
				{Name: ColRepairID, Kind: KindText},
				{Name: ColCustPhone, Kind: KindText},
				{Name: ColDevice, Kind: KindText},
				{Name: ColIssue, Kind: KindText},
				{Name: ColStatus, Kind: KindText, Default: RepairStatusReceived},
				{Name: ColPrice, Kind: KindNumeric},
			},
		},
		DatasetUsers: {
			Dataset:  DatasetUsers,
			File:     "users.csv",
			Key:      ColUsername,
			Identity: ColUsername,
			Columns: []Column{
				{Name: ColUsername, Kind: KindText, Default: ""},
				{Name: ColPassword, Kind: KindText, Default: ""},
				{Name: ColRole, Kind: KindText, Default: RoleStaff},
			},
		},
	}
}
