package receiving

import "fmt"

// PreEntradaItem: нота поставщика, ещё не зарегистрированная как полученная.
type PreEntradaItem struct {
	Branch        int64
	InvoiceNumber int64
	SupplierCode  int64
	SupplierName  string
}

func (p PreEntradaItem) Key() Key {
	return Key{Branch: p.Branch, InvoiceNumber: p.InvoiceNumber, SupplierCode: p.SupplierCode}
}

// EntradaNotaItem: запись о приёмке (ожидает подтверждения или уже подтверждена).
type EntradaNotaItem struct {
	Branch        int64
	InvoiceNumber int64
	SupplierCode  int64
	SupplierName  string
	Confirmed     bool
}

func (e EntradaNotaItem) Key() Key {
	return Key{Branch: e.Branch, InvoiceNumber: e.InvoiceNumber, SupplierCode: e.SupplierCode}
}

// EntradaPayload: тело POST /pre и PUT /confirmar.
type EntradaPayload struct {
	BranchCode    int64 `json:"codfilial"`
	InvoiceNumber int64 `json:"numnota"`
	SupplierCode  int64 `json:"codfornec"`
}

func (p EntradaPayload) Key() Key {
	return Key{Branch: p.BranchCode, InvoiceNumber: p.InvoiceNumber, SupplierCode: p.SupplierCode}
}

// Key: тройка (filial, nota, fornecedor), по которой адресуется нота.
type Key struct {
	Branch        int64
	InvoiceNumber int64
	SupplierCode  int64
}

func (k Key) Payload() EntradaPayload {
	return EntradaPayload{BranchCode: k.Branch, InvoiceNumber: k.InvoiceNumber, SupplierCode: k.SupplierCode}
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%d", k.Branch, k.InvoiceNumber, k.SupplierCode)
}

// State: копия состояния синхронизатора, которую получают потребители.
type State struct {
	PendingInvoices []PreEntradaItem
	PendingTotal    int
	ReceiptRecords  []EntradaNotaItem
	ReceiptTotal    int
	Loading         bool
	Creating        bool
	Confirming      bool
	LastError       string
	// Version растёт на каждом изменении состояния.
	Version uint64
}
