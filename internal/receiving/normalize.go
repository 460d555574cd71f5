package receiving

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Бэкенд отдаёт одно и то же поле в разных написаниях. Порядок ключей: приоритет.
var (
	statusKeys   = []string{"entrada", "enrtada", "ENTRADA"}
	branchKeys   = []string{"filial", "codfilial", "CODFILIAL"}
	invoiceKeys  = []string{"numNota", "numnota", "NUMNOTA"}
	supplierKeys = []string{"codFornec", "codfornec", "CODFORNEC"}
	nameKeys     = []string{"fornecedor", "FORNECEDOR"}
)

const statusConfirmed = "S"

// envelope: общая обёртка ответа сервиса { ok, total, data, error, detalhe }.
type envelope struct {
	OK      bool             `json:"ok"`
	Total   any              `json:"total"`
	Data    []map[string]any `json:"data"`
	Error   any              `json:"error"`
	Detalhe any              `json:"detalhe"`
}

func decodeEnvelope(body []byte) (*envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// decodeObject разбирает произвольный JSON-объект (сырое тело успешной мутации).
func decodeObject(body []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return map[string]any{}
	}
	return out
}

// lookup возвращает первое присутствующее и не-null значение по списку ключей.
func lookup(row map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// ResolveStatus возвращает "S" или "N" для сырой строки ответа /enrtada.
func ResolveStatus(row map[string]any) string {
	raw := "N"
	if v, ok := lookup(row, statusKeys...); ok {
		raw = toText(v)
	}
	if strings.ToUpper(strings.TrimSpace(raw)) == statusConfirmed {
		return statusConfirmed
	}
	return "N"
}

func normalizePending(rows []map[string]any) []PreEntradaItem {
	out := make([]PreEntradaItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, PreEntradaItem{
			Branch:        intField(r, branchKeys),
			InvoiceNumber: intField(r, invoiceKeys),
			SupplierCode:  intField(r, supplierKeys),
			SupplierName:  nameField(r),
		})
	}
	return out
}

func normalizeReceipts(rows []map[string]any) []EntradaNotaItem {
	out := make([]EntradaNotaItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, EntradaNotaItem{
			Branch:        intField(r, branchKeys),
			InvoiceNumber: intField(r, invoiceKeys),
			SupplierCode:  intField(r, supplierKeys),
			SupplierName:  nameField(r),
			Confirmed:     ResolveStatus(r) == statusConfirmed,
		})
	}
	return out
}

// resolveTotal: числовой total из ответа, иначе количество элементов.
// Значения вне диапазона int считаются нечисловыми.
func resolveTotal(raw any, count int) int {
	var f float64
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return count
		}
		f = n
	case float64:
		f = v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return count
		}
		f = n
	default:
		return count
	}
	if !inIntRange(f, math.MinInt, math.MaxInt) {
		return count
	}
	return int(f)
}

// inIntRange: f конечно и после отбрасывания дробной части помещается в [lo, hi].
func inIntRange(f float64, lo, hi int64) bool {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	t := math.Trunc(f)
	// float64(hi) округляется вверх до 2^63, поэтому граница строгая
	return t >= float64(lo) && t < float64(hi)
}

func intField(row map[string]any, keys []string) int64 {
	v, ok := lookup(row, keys...)
	if !ok {
		return 0
	}
	return toInt(v)
}

func nameField(row map[string]any) string {
	v, ok := lookup(row, nameKeys...)
	if !ok {
		return ""
	}
	return toText(v)
}

// toInt приводит число или числовую строку к int64; всё остальное: 0.
func toInt(v any) int64 {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil && inIntRange(f, math.MinInt64, math.MaxInt64) {
			return int64(f)
		}
	case float64:
		if inIntRange(x, math.MinInt64, math.MaxInt64) {
			return int64(x)
		}
	case int:
		return int64(x)
	case int64:
		return x
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && inIntRange(f, math.MinInt64, math.MaxInt64) {
			return int64(f)
		}
	case bool:
		if x {
			return 1
		}
	}
	return 0
}

func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// messageOf возвращает строку, только если поле: непустая строка.
func messageOf(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
