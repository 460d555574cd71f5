package receiving

import "fmt"

type Op string

const (
	OpFetchPending  Op = "fetch_pending"
	OpFetchReceipts Op = "fetch_receipts"
	OpCreate        Op = "create"
	OpConfirm       Op = "confirm"
)

type ErrorKind int

const (
	// KindEnvelope: транспорт отработал, но сервис ответил ok:false (или мусором).
	KindEnvelope ErrorKind = iota + 1
	// KindTransport: сеть, таймаут, не-2xx.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindEnvelope:
		return "envelope"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Тексты по умолчанию, когда сервис не прислал ничего осмысленного.
var (
	envelopeFallback = map[Op]string{
		OpFetchPending:  "Resposta inválida da API",
		OpFetchReceipts: "Resposta inválida da API",
		OpCreate:        "Erro ao criar entrada",
		OpConfirm:       "Erro ao confirmar entrada",
	}
	transportFallback = map[Op]string{
		OpFetchPending:  "Erro ao buscar pré-entradas",
		OpFetchReceipts: "Erro ao buscar entradas",
		OpCreate:        "Erro ao salvar entrada",
		OpConfirm:       "Erro ao confirmar entrada",
	}
)

// RemoteError: неуспешный вызов удалённого сервиса.
type RemoteError struct {
	Op      Op
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string { return e.Message }

func (e *RemoteError) Unwrap() error { return e.Err }

// envelopeError: error → detalhe → текст по умолчанию для операции.
func envelopeError(op Op, status int, env *envelope) *RemoteError {
	msg := ""
	if env != nil {
		msg = firstNonEmpty(messageOf(env.Error), messageOf(env.Detalhe))
	}
	return &RemoteError{
		Op:      op,
		Kind:    KindEnvelope,
		Status:  status,
		Message: firstNonEmpty(msg, envelopeFallback[op]),
	}
}

// transportError: поле error/detalhe из тела ответа → текст ошибки транспорта → по умолчанию.
func transportError(op Op, status int, body []byte, cause error) *RemoteError {
	msg := ""
	if len(body) > 0 {
		if env, err := decodeEnvelope(body); err == nil {
			msg = firstNonEmpty(messageOf(env.Error), messageOf(env.Detalhe))
		}
	}
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &RemoteError{
		Op:      op,
		Kind:    KindTransport,
		Status:  status,
		Message: firstNonEmpty(msg, transportFallback[op]),
		Err:     cause,
	}
}

type statusError struct{ code int }

func (e statusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.code)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
