// internal/domain/models.go
package domain

import "time"

// DatasetKind identifies which spreadsheet-backed dataset an operation targets.
type DatasetKind string

const (
	DatasetStock  DatasetKind = "stock"
	DatasetDemand DatasetKind = "demand"
)

// Valid reports whether the kind is one of the two known datasets.
func (k DatasetKind) Valid() bool {
	return k == DatasetStock || k == DatasetDemand
}

// Upload statuses as persisted in upload_history.
const (
	UploadStatusProcessing = "processing"
	UploadStatusSuccess    = "success"
	UploadStatusPartial    = "partial"
	UploadStatusError      = "error"
	UploadStatusCanceled   = "canceled"
)

// Urgency tiers derived from the fulfillment percentage.
const (
	UrgencyCritical = "critical"
	UrgencyMedium   = "medium"
	UrgencyNormal   = "normal"
)

// Calculation modes. All three share the same arithmetic today; weighted is
// a recognized value awaiting a historical-weighting policy.
const (
	ModeStandard   = "standard"
	ModePercentage = "percentage"
	ModeWeighted   = "weighted"
)

// PickingAreaCode is the only storage-area code eligible for replenishment.
const PickingAreaCode = "1"

// StockRecord is one stock-keeping slot occurrence from the estoque sheet.
// The whole table is replaced on every stock upload.
type StockRecord struct {
	ID               int64   `json:"id" db:"id"`
	Material         string  `json:"material" db:"material"`
	Center           string  `json:"center" db:"center"`
	Description      string  `json:"description" db:"description"`
	DepositType      string  `json:"deposit_type" db:"deposit_type"`
	Slot             string  `json:"slot" db:"slot"`
	AvailableQty     float64 `json:"available_qty" db:"available_qty"`
	BaseUnit         string  `json:"base_unit" db:"base_unit"`
	GoodsReceiptDate *string `json:"goods_receipt_date" db:"goods_receipt_date"`
	StorageArea      string  `json:"storage_area" db:"storage_area"`
	SlotType         string  `json:"slot_type" db:"slot_type"`
	DepositUnit      string  `json:"deposit_unit" db:"deposit_unit"`
	Deposit          string  `json:"deposit" db:"deposit"`
}

// DemandRecord is one demand-transaction line from the demanda sheet. Most
// fields are pass-through logistics attributes the engine never interprets;
// the calculator only reads Material, RequestedQty, Unit and Description.
type DemandRecord struct {
	ID             int64   `json:"id" db:"id"`
	WarehouseNo    string  `json:"warehouse_no" db:"warehouse_no"`
	TransferOrder  string  `json:"transfer_order" db:"transfer_order"`
	Status         string  `json:"status" db:"status"`
	TransportType  string  `json:"transport_type" db:"transport_type"`
	TransportPrio  string  `json:"transport_prio" db:"transport_prio"`
	User           string  `json:"user" db:"user_code"`
	CreatedDate    *string `json:"created_date" db:"created_date"`
	CreatedTime    *string `json:"created_time" db:"created_time"`
	MovementType   string  `json:"movement_type" db:"movement_type"`
	DepositType    string  `json:"deposit_type" db:"deposit_type"`
	Slot           string  `json:"slot" db:"slot"`
	PlannedDate    *string `json:"planned_date" db:"planned_date"`
	TransportRef   string  `json:"transport_ref" db:"transport_ref"`
	OrderItem      string  `json:"order_item" db:"order_item"`
	ItemDone       string  `json:"item_done" db:"item_done"`
	Material       string  `json:"material" db:"material"`
	Center         string  `json:"center" db:"center"`
	RequestedQty   float64 `json:"requested_qty" db:"requested_qty"`
	Unit           string  `json:"unit" db:"unit"`
	PickOrder      string  `json:"pick_order" db:"pick_order"`
	PickedQty      float64 `json:"picked_qty" db:"picked_qty"`
	Deposit        string  `json:"deposit" db:"deposit"`
	Description    string  `json:"description" db:"description"`
	Sector         string  `json:"sector" db:"sector"`
	Pallet         string  `json:"pallet" db:"pallet"`
	OriginPallet   string  `json:"origin_pallet" db:"origin_pallet"`
	Address        string  `json:"address" db:"address"`
	OT             string  `json:"ot" db:"ot"`
	PurchaseOrder  string  `json:"purchase_order" db:"purchase_order"`
	Delivery       string  `json:"delivery" db:"delivery"`
	UserName       string  `json:"user_name" db:"user_name"`
	ProductionDate *string `json:"production_date" db:"production_date"`
	RecordTime     *string `json:"record_time" db:"record_time"`
	Date           *string `json:"date" db:"date"`
}

// Settings is the singleton policy record (id fixed at 1) consumed by the
// position calculator.
type Settings struct {
	ID                int64     `json:"id" db:"id"`
	CalculationMode   string    `json:"calculation_mode" db:"calculation_mode"`
	CriticalThreshold int       `json:"critical_threshold" db:"critical_threshold"`
	Notifications     bool      `json:"notifications" db:"notifications"`
	AutoRefresh       bool      `json:"auto_refresh" db:"auto_refresh"`
	CompactMode       bool      `json:"compact_mode" db:"compact_mode"`
	LastUpdated       time.Time `json:"last_updated" db:"last_updated"`
}

// SettingsUpdate carries a partial-field merge onto the singleton. Nil
// fields are left unchanged.
type SettingsUpdate struct {
	CalculationMode   *string `json:"calculation_mode"`
	CriticalThreshold *int    `json:"critical_threshold"`
	Notifications     *bool   `json:"notifications"`
	AutoRefresh       *bool   `json:"auto_refresh"`
	CompactMode       *bool   `json:"compact_mode"`
}

// Empty reports whether the update would change nothing.
func (u SettingsUpdate) Empty() bool {
	return u.CalculationMode == nil && u.CriticalThreshold == nil &&
		u.Notifications == nil && u.AutoRefresh == nil && u.CompactMode == nil
}

// AffectsCalculation reports whether the update touches a field the
// position calculator depends on, in which case the caller must trigger a
// recalculation afterwards.
func (u SettingsUpdate) AffectsCalculation() bool {
	return u.CalculationMode != nil || u.CriticalThreshold != nil
}

// Position is one derived replenishment position. The whole set is deleted
// and reinserted by every calculation run; no record outlives a run.
type Position struct {
	ID             int64   `json:"id" db:"id"`
	Aisle          string  `json:"aisle" db:"aisle"`
	Slot           string  `json:"slot" db:"slot"`
	Material       string  `json:"material" db:"material"`
	Description    string  `json:"description" db:"description"`
	CurrentBalance float64 `json:"current_balance" db:"current_balance"`
	Demand         float64 `json:"demand" db:"demand"`
	FulfillmentPct int     `json:"fulfillment_pct" db:"fulfillment_pct"`
	RequiredQty    float64 `json:"required_qty" db:"required_qty"`
	Urgency        string  `json:"urgency" db:"urgency"`
	Unit           string  `json:"unit" db:"unit"`
	Depot          string  `json:"depot" db:"depot"`
}

// PositionFilter narrows the positions listing. Zero values (or the
// literal "all") mean no filtering on that dimension.
type PositionFilter struct {
	Aisle   string `json:"aisle"`
	Urgency string `json:"urgency"`
	Depot   string `json:"depot"`
	Search  string `json:"search"`
}

// AisleGroup is the query layer's output unit: one aisle and its matching
// positions, in first-seen order.
type AisleGroup struct {
	Aisle     string     `json:"aisle"`
	Positions []Position `json:"positions"`
}

// UploadHistoryEntry tracks one ingestion run. Created in processing
// status before the target dataset is touched, mutated as batches commit,
// finalized at the end.
type UploadHistoryEntry struct {
	ID               int64     `json:"id" db:"id"`
	Dataset          string    `json:"dataset" db:"dataset"`
	FileName         string    `json:"file_name" db:"file_name"`
	SizeBytes        int64     `json:"size_bytes" db:"size_bytes"`
	RecordsProcessed int       `json:"records_processed" db:"records_processed"`
	Status           string    `json:"status" db:"status"`
	Message          string    `json:"message" db:"message"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// IngestResult is what the ingestion pipeline reports back to the caller.
type IngestResult struct {
	RecordsProcessed int      `json:"records_processed"`
	Status           string   `json:"status"`
	Warnings         []string `json:"warnings,omitempty"`
}
