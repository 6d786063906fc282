// internal/ingest/mapper.go
package ingest

import (
	"strings"

	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/excel"
)

// The mapper is table-driven: each dataset kind has one declarative list of
// column specs, so adding a field is a data change. Header lookup is exact
// (case- and accent-sensitive) against the two fixed Portuguese header sets
// shipped by the warehouse system. Missing headers default rather than
// fail: text to "", numbers to 0, dates and times to nil.

type fieldKind uint8

const (
	fieldText fieldKind = iota
	fieldNumber
	fieldDate
	fieldTime
)

// cellValue is the normalized output for a single mapped cell. Exactly one
// of the members is meaningful, per the column's kind.
type cellValue struct {
	Text   string
	Number float64
	Ref    *string
}

func normalizeCell(row excel.Row, header string, kind fieldKind) cellValue {
	raw := row[header]
	switch kind {
	case fieldNumber:
		return cellValue{Number: excel.ParseNumber(raw)}
	case fieldDate:
		return cellValue{Ref: excel.ConvertExcelDate(raw)}
	case fieldTime:
		return cellValue{Ref: excel.ConvertExcelTime(raw)}
	default:
		return cellValue{Text: strings.TrimSpace(raw)}
	}
}

type stockColumn struct {
	header string
	kind   fieldKind
	assign func(r *domain.StockRecord, v cellValue)
}

var stockColumns = []stockColumn{
	{"Material", fieldText, func(r *domain.StockRecord, v cellValue) { r.Material = v.Text }},
	{"Centro", fieldText, func(r *domain.StockRecord, v cellValue) { r.Center = v.Text }},
	{"Texto breve de material", fieldText, func(r *domain.StockRecord, v cellValue) { r.Description = v.Text }},
	{"Tipo de depósito", fieldText, func(r *domain.StockRecord, v cellValue) { r.DepositType = v.Text }},
	{"Posição no depósito", fieldText, func(r *domain.StockRecord, v cellValue) { r.Slot = v.Text }},
	{"Estoque disponível", fieldNumber, func(r *domain.StockRecord, v cellValue) { r.AvailableQty = v.Number }},
	{"UM básica", fieldText, func(r *domain.StockRecord, v cellValue) { r.BaseUnit = v.Text }},
	{"Data da entrada de mercadorias", fieldDate, func(r *domain.StockRecord, v cellValue) { r.GoodsReceiptDate = v.Ref }},
	{"Ár.armazen.", fieldText, func(r *domain.StockRecord, v cellValue) { r.StorageArea = v.Text }},
	{"Tipo posição no dep.", fieldText, func(r *domain.StockRecord, v cellValue) { r.SlotType = v.Text }},
	{"Unidade de depósito", fieldText, func(r *domain.StockRecord, v cellValue) { r.DepositUnit = v.Text }},
	{"Depósito", fieldText, func(r *domain.StockRecord, v cellValue) { r.Deposit = v.Text }},
}

type demandColumn struct {
	header string
	kind   fieldKind
	assign func(r *domain.DemandRecord, v cellValue)
}

var demandColumns = []demandColumn{
	{"N_DEPOSITO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.WarehouseNo = v.Text }},
	{"NUMERO_NT", fieldText, func(r *domain.DemandRecord, v cellValue) { r.TransferOrder = v.Text }},
	{"STATUS", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Status = v.Text }},
	{"TP_TRANSPORTE", fieldText, func(r *domain.DemandRecord, v cellValue) { r.TransportType = v.Text }},
	{"PRIO_TRANSPORTE", fieldText, func(r *domain.DemandRecord, v cellValue) { r.TransportPrio = v.Text }},
	{"USUARIO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.User = v.Text }},
	{"DT_CRIACAO", fieldDate, func(r *domain.DemandRecord, v cellValue) { r.CreatedDate = v.Ref }},
	{"HR_CRIACAO", fieldTime, func(r *domain.DemandRecord, v cellValue) { r.CreatedTime = v.Ref }},
	{"TP_MOVIMENTO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.MovementType = v.Text }},
	{"TP_DEPOSITO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.DepositType = v.Text }},
	{"POSICAO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Slot = v.Text }},
	{"DT_PLANEJADA", fieldDate, func(r *domain.DemandRecord, v cellValue) { r.PlannedDate = v.Ref }},
	{"REF_TRANSPORTE", fieldText, func(r *domain.DemandRecord, v cellValue) { r.TransportRef = v.Text }},
	{"ITEM_NT", fieldText, func(r *domain.DemandRecord, v cellValue) { r.OrderItem = v.Text }},
	{"ITEM_FINALIZADO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.ItemDone = v.Text }},
	{"MATERIAL", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Material = v.Text }},
	{"CENTRO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Center = v.Text }},
	{"QUANT_NT", fieldNumber, func(r *domain.DemandRecord, v cellValue) { r.RequestedQty = v.Number }},
	{"UNIDADE", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Unit = v.Text }},
	{"NUMERO_OT", fieldText, func(r *domain.DemandRecord, v cellValue) { r.PickOrder = v.Text }},
	{"QUANT_OT", fieldNumber, func(r *domain.DemandRecord, v cellValue) { r.PickedQty = v.Number }},
	{"DEPOSITO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Deposit = v.Text }},
	{"DESC_MATERIAL", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Description = v.Text }},
	{"SETOR", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Sector = v.Text }},
	{"PALETE", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Pallet = v.Text }},
	{"PALETE_ORIGEM", fieldText, func(r *domain.DemandRecord, v cellValue) { r.OriginPallet = v.Text }},
	{"ENDERECO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Address = v.Text }},
	{"OT", fieldText, func(r *domain.DemandRecord, v cellValue) { r.OT = v.Text }},
	{"PEDIDO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.PurchaseOrder = v.Text }},
	{"REMESSA", fieldText, func(r *domain.DemandRecord, v cellValue) { r.Delivery = v.Text }},
	{"NOME_USUARIO", fieldText, func(r *domain.DemandRecord, v cellValue) { r.UserName = v.Text }},
	{"DT_PRODUCAO", fieldDate, func(r *domain.DemandRecord, v cellValue) { r.ProductionDate = v.Ref }},
	{"HR_REGISTRO", fieldTime, func(r *domain.DemandRecord, v cellValue) { r.RecordTime = v.Ref }},
	{"DATA", fieldDate, func(r *domain.DemandRecord, v cellValue) { r.Date = v.Ref }},
}

// MapStockRow maps one raw spreadsheet row into a canonical stock record.
func MapStockRow(row excel.Row) domain.StockRecord {
	var rec domain.StockRecord
	for _, col := range stockColumns {
		col.assign(&rec, normalizeCell(row, col.header, col.kind))
	}
	return rec
}

// MapDemandRow maps one raw spreadsheet row into a canonical demand record.
func MapDemandRow(row excel.Row) domain.DemandRecord {
	var rec domain.DemandRecord
	for _, col := range demandColumns {
		col.assign(&rec, normalizeCell(row, col.header, col.kind))
	}
	return rec
}
