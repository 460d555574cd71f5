package bot

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/Spok95/preentrada-bot/internal/receiving"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// listFilter: фильтр по филиалу и строка поиска (fornecedor или número da nota).
type listFilter struct {
	Branch    int64
	HasBranch bool
	Query     string
}

// fold убирает диакритику и регистр: "Açúcar União" -> "acucar uniao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func (f listFilter) match(branch, invoice int64, supplier string) bool {
	if f.HasBranch && branch != f.Branch {
		return false
	}
	q := fold(f.Query)
	if q == "" {
		return true
	}
	return strings.Contains(fold(supplier), q) ||
		strings.Contains(strconv.FormatInt(invoice, 10), q)
}

func filterPending(items []receiving.PreEntradaItem, f listFilter) []receiving.PreEntradaItem {
	out := make([]receiving.PreEntradaItem, 0, len(items))
	for _, it := range items {
		if f.match(it.Branch, it.InvoiceNumber, it.SupplierName) {
			out = append(out, it)
		}
	}
	return out
}

func filterReceipts(items []receiving.EntradaNotaItem, f listFilter) []receiving.EntradaNotaItem {
	out := make([]receiving.EntradaNotaItem, 0, len(items))
	for _, it := range items {
		if f.match(it.Branch, it.InvoiceNumber, it.SupplierName) {
			out = append(out, it)
		}
	}
	return out
}

// distinctBranches: уникальные филиалы по возрастанию.
func distinctBranches(branches []int64) []int64 {
	seen := make(map[int64]struct{}, len(branches))
	out := make([]int64, 0, len(branches))
	for _, b := range branches {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func pendingBranches(items []receiving.PreEntradaItem) []int64 {
	bs := make([]int64, 0, len(items))
	for _, it := range items {
		bs = append(bs, it.Branch)
	}
	return distinctBranches(bs)
}

func receiptBranches(items []receiving.EntradaNotaItem) []int64 {
	bs := make([]int64, 0, len(items))
	for _, it := range items {
		bs = append(bs, it.Branch)
	}
	return distinctBranches(bs)
}
