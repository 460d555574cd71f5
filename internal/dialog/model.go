package dialog

type State string

const (
	StateIdle State = "idle"

	// Пре-энтрады
	StatePreList    State = "pre_list"
	StatePreSearch  State = "pre_search"  // ждём текст поиска
	StatePreConfirm State = "pre_confirm" // карточка ноты с кнопкой «Registrar»

	// Энтрады
	StateEntList    State = "ent_list"
	StateEntSearch  State = "ent_search"
	StateEntConfirm State = "ent_confirm" // карточка с кнопкой «Confirmar»
)

// Ключи payload
const (
	KeyQuery   = "q"
	KeyBranch  = "branch"
	KeyLastMID = "last_mid"
	KeySel     = "sel"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
