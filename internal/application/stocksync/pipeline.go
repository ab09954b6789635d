package stocksync

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stocksync/backend/internal/domain/stock"
	"github.com/stocksync/backend/internal/infrastructure/spreadsheet"
)

// Column names of the closing-stock report
const (
	ColItemCode     = "Item Code"
	ColItemName     = "Item Name"
	ColClosingQty   = "Closing Qty"
	ColMRP          = "MRP"
	ColSaleRate     = "Sale Rate"
	ColPurchaseRate = "Purchase Rate"
)

// Column names of the item directory
const (
	ColDiscount = "Discount"
)

// Progress step indices reported to the caller. The pipeline steps occupy
// indices 1..7; the surrounding read/prepare phases are reported by the
// caller of Run.
const (
	ProgressReadFiles      = 0
	ProgressPreparePreview = 8
)

// ProgressFunc receives the index of each executed step so a UI can render
// live progress. It has no effect on pipeline correctness; nil is a no-op.
type ProgressFunc func(stepIndex int, key string)

// Pipeline converts the two ingested row sets into canonical stock records
// through a fixed, ordered sequence of pure transform steps. Each step is
// deterministic and touches no external state, so running the pipeline
// twice on identical input and config yields identical output.
type Pipeline struct {
	logger *zap.Logger
}

// NewPipeline creates a transform pipeline
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{logger: logger}
}

// stockRow is the working shape of one cleaned closing-stock row
type stockRow struct {
	itemCode     string
	itemName     string
	qty          int64
	mrp          int64
	saleRate     int64
	purchaseRate int64
}

// draft carries a canonical record plus the transient discount field that
// finalizeData strips from the output shape
type draft struct {
	rec      stock.CanonicalStockRecord
	discount int64
}

// Run executes the pipeline. Steps execute in their fixed order; the
// supplied configuration can disable non-mandatory steps but never reorders
// them, and disabling a mandatory step is ignored at execution time.
func (p *Pipeline) Run(
	stockRows []*spreadsheet.RawRow,
	directoryRows []*spreadsheet.RawRow,
	steps []stock.WorkflowStep,
	onStep ProgressFunc,
) ([]stock.CanonicalStockRecord, error) {
	if len(steps) == 0 {
		return nil, stock.ErrNoWorkflowConfig
	}
	if onStep == nil {
		onStep = func(int, string) {}
	}

	enabled := make(map[string]bool, len(steps))
	for _, s := range steps {
		enabled[s.Key] = s.Enabled
	}

	// The execution sequence is owned by the pipeline, not the config: the
	// config contributes only the enabled flags, and mandatory steps run
	// regardless of what the config says about them.
	execute := func(def stock.WorkflowStep) bool {
		if def.Mandatory {
			return true
		}
		if on, ok := enabled[def.Key]; ok {
			return on
		}
		return def.Enabled
	}

	defs := stock.DefaultWorkflowSteps()
	stock.SortSteps(defs)

	rows := make([]stockRow, 0, len(stockRows))
	discounts := make(map[string]int64)
	var drafts []draft

	for i, def := range defs {
		if !execute(def) {
			p.logger.Debug("skipping disabled step", zap.String("step", def.Key))
			continue
		}

		switch def.Key {
		case stock.StepCleanClosingStock:
			rows = cleanClosingStock(stockRows)
		case stock.StepDeduplicateClosingStock:
			rows = deduplicateClosingStock(rows)
		case stock.StepCleanItemDirectory:
			discounts = cleanItemDirectory(directoryRows)
		case stock.StepRenameColumns:
			drafts = renameColumns(rows)
		case stock.StepApplyDiscounts:
			applyDiscounts(drafts, discounts)
		case stock.StepCalculateNewSalePrice:
			calculateNewSalePrice(drafts)
		case stock.StepFinalizeData:
			// The transient discount field exists only on the draft shape;
			// finalization projects down to the canonical record.
		}

		onStep(i+1, def.Key)
	}

	records := make([]stock.CanonicalStockRecord, 0, len(drafts))
	for _, d := range drafts {
		records = append(records, d.rec)
	}

	p.logger.Info("pipeline completed",
		zap.Int("input_rows", len(stockRows)),
		zap.Int("directory_rows", len(directoryRows)),
		zap.Int("canonical_records", len(records)),
	)

	return records, nil
}

// cleanClosingStock drops rows with a blank sale rate, coerces the numeric
// columns and drops rows whose purchase rate or stock quantity is negative.
func cleanClosingStock(rows []*spreadsheet.RawRow) []stockRow {
	out := make([]stockRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Get(ColSaleRate)) == "" {
			continue
		}
		r := stockRow{
			itemCode:     strings.TrimSpace(row.Get(ColItemCode)),
			itemName:     strings.TrimSpace(row.Get(ColItemName)),
			qty:          CeilNumeric(row.Get(ColClosingQty)),
			mrp:          CeilNumeric(row.Get(ColMRP)),
			saleRate:     CeilNumeric(row.Get(ColSaleRate)),
			purchaseRate: CeilNumeric(row.Get(ColPurchaseRate)),
		}
		if r.purchaseRate < 0 || r.qty < 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// deduplicateClosingStock keeps exactly one row per item code: the one with
// the highest MRP, ties broken by highest stock quantity. Duplicate rows
// represent stale or alternate listings; the highest-value entry is treated
// as authoritative. Output is sorted by item code so the pipeline result is
// stable across runs.
func deduplicateClosingStock(rows []stockRow) []stockRow {
	best := make(map[string]stockRow, len(rows))
	for _, r := range rows {
		cur, ok := best[r.itemCode]
		if !ok || r.mrp > cur.mrp || (r.mrp == cur.mrp && r.qty > cur.qty) {
			best[r.itemCode] = r
		}
	}
	out := make([]stockRow, 0, len(best))
	for _, r := range best {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].itemCode < out[j].itemCode })
	return out
}

// cleanItemDirectory builds the item-code to discount mapping. Directory
// data is advisory: unparseable input becomes zero, never an error.
func cleanItemDirectory(rows []*spreadsheet.RawRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		code := strings.TrimSpace(row.Get(ColItemCode))
		if code == "" {
			continue
		}
		out[code] = CleanDiscount(row.Get(ColDiscount))
	}
	return out
}

// renameColumns projects deduplicated stock rows into canonical field names.
// The sale price starts as the old sale rate; later steps rewrite it.
func renameColumns(rows []stockRow) []draft {
	out := make([]draft, 0, len(rows))
	for _, r := range rows {
		out = append(out, draft{rec: stock.CanonicalStockRecord{
			SKU:          r.itemCode,
			Name:         r.itemName,
			RegularPrice: r.mrp,
			OldSalePrice: r.saleRate,
			SalePrice:    r.saleRate,
			Stock:        r.qty,
			PurchaseRate: r.purchaseRate,
		}})
	}
	return out
}

// applyDiscounts left-joins the directory by SKU. Records without a
// directory entry keep discount zero.
func applyDiscounts(drafts []draft, discounts map[string]int64) {
	for i := range drafts {
		drafts[i].discount = discounts[drafts[i].rec.SKU]
	}
}

// calculateNewSalePrice sets salePrice = ceil(oldSalePrice * (1 - discount/100)).
func calculateNewSalePrice(drafts []draft) {
	for i := range drafts {
		d := &drafts[i]
		price := decimal.NewFromInt(d.rec.OldSalePrice).
			Mul(decimal.NewFromInt(100 - d.discount)).
			Div(decimal.NewFromInt(100)).
			Ceil()
		d.rec.SalePrice = price.IntPart()
	}
}

// CeilNumeric coerces a spreadsheet cell to a whole number by ceiling.
// Non-numeric input becomes zero; the sign is preserved so that negative
// source values can still be detected and dropped by the cleaning step.
func CeilNumeric(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return int64(math.Ceil(f))
}

// CleanDiscount parses a directory discount cell. The source data writes
// absent discounts as "nil" or "(nil)" and percentages with a trailing "%";
// anything unparseable counts as zero because directory data is advisory.
func CleanDiscount(s string) int64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	switch strings.ToLower(s) {
	case "", "nil", "(nil)":
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Ceil(f))
}
